// Package sanitize normalizes untrusted catalog records into valid items.
//
// Three paths feed external data into the catalog: the store read at startup,
// user-supplied restore files, and bulk imports. Every record from any of
// them passes through Sanitize, so no malformed input can violate the item
// invariants. Sanitize is total: it never fails, it substitutes defaults.
package sanitize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/id"
)

// dateLayouts are tried in order when parsing date-like strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
}

// Sanitize coerces an arbitrary decoded-JSON value into a well-formed item.
// Each rule is independent; a garbage field never affects its neighbors.
func Sanitize(raw any) *domain.Item {
	rec, _ := raw.(map[string]any)

	item := &domain.Item{}

	// Identity: keep a supplied non-empty string id, otherwise mint one.
	if s, ok := String(rec["id"]); ok && s != "" {
		item.ID = s
	} else {
		item.ID = id.MustGenerate(id.PrefixItem)
	}

	// Title falls back to the placeholder rather than an empty string.
	if s, ok := String(rec["title"]); ok && strings.TrimSpace(s) != "" {
		item.Title = truncate(s, domain.MaxTitleLen)
	} else {
		item.Title = domain.DefaultTitle
	}

	item.Author = truncate(Text(rec["author"]), domain.MaxAuthorLen)
	item.Description = truncate(Text(rec["description"]), domain.MaxTextLen)
	item.Notes = truncate(Text(rec["notes"]), domain.MaxTextLen)

	if d := ParseDate(rec["publicationDate"]); d != nil {
		item.PublicationDate = d
	}

	if s, ok := String(rec["imageUrl"]); ok {
		item.ImageRef = cleanTextString(s)
	}
	if s, ok := String(rec["blurHash"]); ok {
		item.BlurHash = s
	}

	item.Tags = sanitizeTags(rec["tags"])
	item.OriginalFileFormats = sanitizeFormats(rec["originalFileFormats"])

	// The N/A sentinel is coupled to the flag; the flag wins.
	if b, ok := rec["isOriginalNameNA"].(bool); ok {
		item.IsOriginalNameNA = b
	}
	if item.IsOriginalNameNA {
		item.OriginalName = domain.OriginalNameNA
	} else if s, ok := String(rec["originalName"]); ok {
		item.OriginalName = truncate(s, domain.MaxOriginalNameLen)
	}

	if s, ok := String(rec["calibredStatus"]); ok && domain.CalibredStatus(s).Valid() {
		item.CalibredStatus = domain.CalibredStatus(s)
	} else {
		item.CalibredStatus = domain.CalibredNo
	}

	// Timestamps parse independently so restored data keeps its history.
	now := time.Now()
	item.CreatedAt = parseTimestamp(rec["createdAt"], now)
	item.UpdatedAt = parseTimestamp(rec["updatedAt"], now)
	if item.UpdatedAt.Before(item.CreatedAt) {
		item.UpdatedAt = item.CreatedAt
	}

	return item
}

// String coerces string and JSON-number values; anything else is rejected.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

// Text coerces an optional text field, collapsing the literal artifacts
// "undefined" and "null" that leak out of loosely typed exporters.
func Text(v any) string {
	s, ok := String(v)
	if !ok {
		return ""
	}
	return cleanTextString(s)
}

func cleanTextString(s string) string {
	if s == "undefined" || s == "null" {
		return ""
	}
	return s
}

// truncate caps s at limit runes. Counting runes keeps multi-byte text
// intact and matches how the form validator measures field lengths.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// ParseDate yields a calendar date or nothing; partially valid input never
// produces a partially valid date.
func ParseDate(v any) *time.Time {
	switch d := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	case float64:
		return dateFromNumber(int64(d))
	case int:
		return dateFromNumber(int64(d))
	case int64:
		return dateFromNumber(d)
	case time.Time:
		return &d
	default:
		return nil
	}
}

// dateFromNumber treats small numbers as years and large ones as Unix
// millisecond timestamps (the JavaScript Date serialization).
func dateFromNumber(n int64) *time.Time {
	if n >= 1000 && n <= 9999 {
		t := time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	if n > 1e11 {
		t := time.UnixMilli(n)
		return &t
	}
	return nil
}

// parseTimestamp is ParseDate with a "now" fallback for the audit fields.
func parseTimestamp(v any, now time.Time) time.Time {
	if t := ParseDate(v); t != nil {
		return *t
	}
	return now
}

// sanitizeTags accepts an array of anything or a comma-separated string.
// The result is always lowercase, trimmed, deduplicated, and silently capped
// at the tag limit; the interactive form is the only place that rejects.
func sanitizeTags(v any) []string {
	switch tags := v.(type) {
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := String(t); ok {
				out = append(out, s)
			}
		}
		return domain.NormalizeTags(out)
	case string:
		return domain.NormalizeTags(strings.Split(tags, ","))
	default:
		return []string{}
	}
}

func sanitizeFormats(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, f := range arr {
		if s, ok := String(f); ok && s != "" {
			out = append(out, s)
		}
		if len(out) == domain.MaxFileFormats {
			break
		}
	}
	return out
}
