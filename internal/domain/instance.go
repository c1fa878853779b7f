package domain

import "time"

// Instance is the singleton record identifying this catalog installation.
// The ID is minted once at first startup and survives backup and restore.
type Instance struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
