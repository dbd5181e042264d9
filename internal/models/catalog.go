package models

import "time"

// Room is scheduling reference data.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	IsLab    bool   `db:"is_lab" json:"is_lab"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Instructor is resolved idempotently by name.
type Instructor struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	EmploymentType string    `db:"employment_type" json:"employment_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Subject is resolved idempotently by code.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Units       int       `db:"units" json:"units"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Section identifies a student block within a department and year level.
type Section struct {
	ID         string    `db:"id" json:"id"`
	Department string    `db:"department" json:"department"`
	YearLevel  int       `db:"year_level" json:"year_level"`
	Block      string    `db:"block" json:"block"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
