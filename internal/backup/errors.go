// Package backup provides catalog export and restore from portable JSON files.
package backup

import "errors"

var (
	// ErrNotJSON indicates the restore file is not a JSON file.
	ErrNotJSON = errors.New("restore file must be a .json file")

	// ErrNotArray indicates the restore file does not hold a top-level array.
	ErrNotArray = errors.New("restore file must contain a JSON array of items")

	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrInvalidScope indicates an unrecognized export scope.
	ErrInvalidScope = errors.New("invalid export scope")
)
