package models

import "time"

// Achievement is a highlighted alumni accomplishment shown on the landing page.
type Achievement struct {
	ID                string    `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	Image             string    `db:"image" json:"image"`
	AlumniName        string    `db:"alumni_name" json:"alumni_name"`
	AlumniDesignation string    `db:"alumni_designation" json:"alumni_designation"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
