package backup

import "time"

// Scope selects which image references survive an export.
type Scope string

const (
	// ScopeURLOnly blanks uploaded-image references; remote URLs survive.
	ScopeURLOnly Scope = "url-only"

	// ScopeUploadOnly blanks remote URLs; uploaded-image references survive.
	ScopeUploadOnly Scope = "upload-only"

	// ScopeBoth keeps every image reference.
	ScopeBoth Scope = "both"
)

// Valid returns true if the scope is recognized.
func (s Scope) Valid() bool {
	switch s {
	case ScopeURLOnly, ScopeUploadOnly, ScopeBoth:
		return true
	default:
		return false
	}
}

// Options configures backup creation.
type Options struct {
	Scope Scope
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{Scope: ScopeBoth}
}

// Result contains the outcome of a backup operation.
type Result struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Items    int           `json:"items"`
	Scope    Scope         `json:"scope"`
	Duration time.Duration `json:"duration"`
}

// Info describes an existing backup file on disk.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// RestoreResult contains the outcome of a restore operation.
type RestoreResult struct {
	Restored         int    `json:"restored"`
	SafetyBackupPath string `json:"safety_backup_path"`
}
