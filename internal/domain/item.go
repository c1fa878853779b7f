// Package domain contains the core business entities and domain logic for the ShelfStash catalog.
package domain

import (
	"slices"
	"strings"
	"time"
)

// Field limits shared by the form validator and the sanitizer.
const (
	MaxTitleLen        = 150
	MaxAuthorLen       = 250
	MaxTagLen          = 25
	MaxTags            = 10
	MaxFileFormats     = 6
	MaxOriginalNameLen = 200
	MaxTextLen         = 1000

	// DefaultTitle is substituted when an external record carries no usable title.
	DefaultTitle = "Untitled"

	// OriginalNameNA is the sentinel coupled to IsOriginalNameNA. Whenever the
	// flag is set the original name MUST hold this exact value; every write
	// path corrects it.
	OriginalNameNA = "N/A"
)

// CalibredStatus tracks whether an item has been run through Calibre.
type CalibredStatus string

// Calibred states.
const (
	CalibredYes CalibredStatus = "yes"
	CalibredNo  CalibredStatus = "no"
	CalibredNA  CalibredStatus = "na"
)

// Valid returns true if the status is recognized.
func (s CalibredStatus) Valid() bool {
	switch s {
	case CalibredYes, CalibredNo, CalibredNA:
		return true
	default:
		return false
	}
}

// KnownFileFormats is the fixed enumeration of source file formats.
// "OTHER" admits a free-form value on the form side.
var KnownFileFormats = []string{
	"AZW3", "EPUB", "MOBI", "PDF", "CBZ", "CBR", "Folder", "OTHER",
}

// Image reference forms. An item's ImageRef is either a remote URL, an
// "upload:{itemID}" token resolving through the image sub-store, or an
// inline data URI held transiently until the engine persists the item.
const (
	uploadRefPrefix = "upload:"
	dataURIPrefix   = "data:image/"
)

// UploadRef builds the reference token for an uploaded image.
func UploadRef(itemID string) string {
	return uploadRefPrefix + itemID
}

// IsUploadRef reports whether ref points into the image sub-store.
func IsUploadRef(ref string) bool {
	return strings.HasPrefix(ref, uploadRefPrefix)
}

// IsDataURI reports whether ref is an inline-encoded image payload.
// Such payloads only exist in memory; the engine moves them into the
// image sub-store before the item record is persisted.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, dataURIPrefix)
}

// Item represents one catalog entry (book or comic).
//
// JSON field names follow the portable backup format so that export files
// round-trip and externally produced libraries restore cleanly.
type Item struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Author              string         `json:"author,omitempty"`
	PublicationDate     *time.Time     `json:"publicationDate,omitempty"`
	Description         string         `json:"description,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	ImageRef            string         `json:"imageUrl,omitempty"`
	BlurHash            string         `json:"blurHash,omitempty"`
	Tags                []string       `json:"tags"`
	OriginalFileFormats []string       `json:"originalFileFormats,omitempty"`
	OriginalName        string         `json:"originalName,omitempty"`
	IsOriginalNameNA    bool           `json:"isOriginalNameNA"`
	CalibredStatus      CalibredStatus `json:"calibredStatus"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Clone returns an independent copy of the item. The catalog engine hands
// clones to callers so nothing read outside its lock aliases memory it
// mutates in place.
func (i *Item) Clone() *Item {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.OriginalFileFormats = slices.Clone(i.OriginalFileFormats)
	if i.PublicationDate != nil {
		d := *i.PublicationDate
		c.PublicationDate = &d
	}
	return &c
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying item changes.
func (i *Item) Touch() {
	i.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new item.
func (i *Item) InitTimestamps() {
	now := time.Now()
	i.CreatedAt = now
	i.UpdatedAt = now
}

// HasTag reports whether the item carries the (already normalized) tag.
func (i *Item) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// EnforceOriginalNameCoupling corrects the originalName/isOriginalNameNA
// invariant: flag set implies the "N/A" sentinel, flag clear implies the
// sentinel-free supplied value.
func (i *Item) EnforceOriginalNameCoupling() {
	if i.IsOriginalNameNA {
		i.OriginalName = OriginalNameNA
	}
}

// NormalizeTag trims and lowercases a single tag. Returns "" for blank input.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags maps every tag through NormalizeTag, drops empties, collapses
// duplicates preserving first occurrence, and caps the result at MaxTags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// ItemForm carries the writable item fields from a trusted caller (the form
// UI or the import reconciler). Validation tags mirror the interactive form
// limits; the sanitizer applies the same rules silently for untrusted input.
type ItemForm struct {
	Title               string     `json:"title" validate:"required,max=150"`
	Author              string     `json:"author,omitempty" validate:"max=250"`
	PublicationDate     *time.Time `json:"publicationDate,omitempty"`
	Description         string     `json:"description,omitempty" validate:"max=1000"`
	Notes               string     `json:"notes,omitempty" validate:"max=1000"`
	ImageRef            string     `json:"imageUrl,omitempty"`
	Tags                []string   `json:"tags,omitempty" validate:"max=10,dive,min=1,max=25"`
	OriginalFileFormats []string   `json:"originalFileFormats,omitempty" validate:"max=6,dive,min=1,max=50"`
	OriginalName        string     `json:"originalName,omitempty" validate:"max=200"`
	IsOriginalNameNA    bool       `json:"isOriginalNameNA,omitempty"`
	CalibredStatus      string     `json:"calibredStatus,omitempty" validate:"omitempty,oneof=yes no na"`
}
