package domain

import "time"

type Medicine struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Stock       int       `db:"stock" json:"stock"`
	Description *string   `db:"description" json:"description,omitempty"`
	Image       *string   `db:"image" json:"image,omitempty"`
	ImageURL    *string   `db:"-" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MedicinePatch carries a partial update; nil fields keep the stored value.
type MedicinePatch struct {
	Name        *string
	Stock       *int
	Description *string
	Image       *string
}
