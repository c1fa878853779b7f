// Package importer reconciles externally produced JSON into catalog items.
//
// Import files come from other tools with their own field names, so each
// record's fields are coalesced from known synonyms before submission. A
// record without a usable title is counted as a failure and skipped; one bad
// record never aborts the batch.
package importer

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/sanitize"
)

// Field synonyms, first match wins.
var (
	titleKeys       = []string{"title", "name"}
	authorKeys      = []string{"author", "authors"}
	dateKeys        = []string{"publicationDate", "year", "publicationYear"}
	descriptionKeys = []string{"description", "summary"}
	imageKeys       = []string{"imageUrl", "image", "coverImage", "cover"}
)

// Status summarizes a batch outcome.
type Status string

// Batch outcomes.
const (
	StatusSuccess Status = "success" // every record imported
	StatusPartial Status = "partial" // some records failed
	StatusFailed  Status = "failed"  // nothing imported
)

// RecordError describes one skipped record.
type RecordError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result reports what happened to a batch.
type Result struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []RecordError `json:"errors,omitempty"`
}

// Status classifies the batch as full success, partial, or total failure.
func (r *Result) Status() Status {
	switch {
	case r.Failed == 0:
		return StatusSuccess
	case r.Imported > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Importer feeds reconciled records into the catalog engine.
type Importer struct {
	engine *catalog.Engine
	logger *slog.Logger
}

// New creates an Importer.
func New(engine *catalog.Engine, logger *slog.Logger) *Importer {
	return &Importer{
		engine: engine,
		logger: logger,
	}
}

// Import accepts a JSON payload holding one object or an array of objects
// and adds every reconcilable record as a new item. Returns an error only
// when the payload itself is unusable; per-record failures land in Result.
func (i *Importer) Import(ctx context.Context, raw []byte) (*Result, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("import payload is not valid JSON: %w", err)
	}

	var records []any
	switch v := decoded.(type) {
	case []any:
		records = v
	case map[string]any:
		records = []any{v}
	default:
		return nil, fmt.Errorf("import payload must be a JSON object or array")
	}

	result := &Result{Total: len(records)}

	for idx, record := range records {
		form, err := reconcile(record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecordError{Index: idx, Reason: err.Error()})
			continue
		}

		item := i.engine.AddItem(ctx, form)
		i.logger.Debug("imported item", "item_id", item.ID, "title", item.Title)
		result.Imported++
	}

	i.logger.Info("import finished",
		"status", result.Status(),
		"total", result.Total,
		"imported", result.Imported,
		"failed", result.Failed)

	return result, nil
}

// reconcile coalesces one raw record into an item form.
func reconcile(record any) (*domain.ItemForm, error) {
	rec, ok := record.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record is not an object")
	}

	title := strings.TrimSpace(firstText(rec, titleKeys))
	if title == "" {
		return nil, fmt.Errorf("record has no title")
	}

	form := &domain.ItemForm{
		Title:        title,
		Author:       authorText(rec),
		Description:  firstText(rec, descriptionKeys),
		Notes:        sanitize.Text(rec["notes"]),
		ImageRef:     firstText(rec, imageKeys),
		Tags:         tagList(rec["tags"]),
		OriginalName: sanitize.Text(rec["originalName"]),
	}

	if d := firstDate(rec, dateKeys); d != nil {
		form.PublicationDate = d
	}

	if b, ok := rec["isOriginalNameNA"].(bool); ok {
		form.IsOriginalNameNA = b
	}

	if s, ok := sanitize.String(rec["calibredStatus"]); ok && domain.CalibredStatus(s).Valid() {
		form.CalibredStatus = s
	}

	if formats, ok := rec["originalFileFormats"].([]any); ok {
		for _, f := range formats {
			if s, ok := sanitize.String(f); ok && s != "" {
				form.OriginalFileFormats = append(form.OriginalFileFormats, s)
			}
		}
	}

	return form, nil
}

// firstText returns the cleaned text of the first synonym key with a value.
func firstText(rec map[string]any, keys []string) string {
	for _, key := range keys {
		if _, present := rec[key]; !present {
			continue
		}
		if s := sanitize.Text(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

// authorText handles the author synonyms, joining an "authors" array.
func authorText(rec map[string]any) string {
	for _, key := range authorKeys {
		switch v := rec[key].(type) {
		case []any:
			var names []string
			for _, n := range v {
				if s := sanitize.Text(n); s != "" {
					names = append(names, s)
				}
			}
			if len(names) > 0 {
				return strings.Join(names, ", ")
			}
		default:
			if s := sanitize.Text(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstDate returns the first synonym key that parses to a date.
func firstDate(rec map[string]any, keys []string) *time.Time {
	for _, key := range keys {
		if d := sanitize.ParseDate(rec[key]); d != nil {
			return d
		}
	}
	return nil
}

// tagList accepts a tag array or a comma-separated string.
func tagList(v any) []string {
	switch tags := v.(type) {
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := sanitize.String(t); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(tags, ",")
	default:
		return nil
	}
}
