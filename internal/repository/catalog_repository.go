package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadsync/timetable-api/internal/models"
)

// InstructorRepository resolves instructors idempotently by name.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindOrCreate upserts an instructor keyed on name, refreshing the
// employment type on conflict.
func (r *InstructorRepository) FindOrCreate(ctx context.Context, name, employmentType string) (*models.Instructor, error) {
	if name == "" {
		return nil, fmt.Errorf("instructor name is required")
	}
	instructor := &models.Instructor{
		ID:             uuid.NewString(),
		Name:           name,
		EmploymentType: employmentType,
		CreatedAt:      time.Now().UTC(),
	}
	const query = `
INSERT INTO instructors (id, name, employment_type, created_at)
VALUES (:id, :name, :employment_type, :created_at)
ON CONFLICT (name) DO UPDATE SET employment_type = EXCLUDED.employment_type`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return nil, fmt.Errorf("upsert instructor: %w", err)
	}

	var existing models.Instructor
	if err := r.db.GetContext(ctx, &existing, `SELECT id, name, employment_type, created_at FROM instructors WHERE name = $1`, name); err != nil {
		return nil, fmt.Errorf("load instructor: %w", err)
	}
	return &existing, nil
}

// FindByID loads one instructor.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, `SELECT id, name, employment_type, created_at FROM instructors WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// SubjectRepository resolves subjects idempotently by code.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindOrCreate upserts a subject keyed on code. Description and units are
// refreshed when provided.
func (r *SubjectRepository) FindOrCreate(ctx context.Context, code, description string, units int) (*models.Subject, error) {
	if code == "" {
		return nil, fmt.Errorf("subject code is required")
	}
	subject := &models.Subject{
		ID:          uuid.NewString(),
		Code:        code,
		Description: description,
		Units:       units,
		CreatedAt:   time.Now().UTC(),
	}
	const query = `
INSERT INTO subjects (id, code, description, units, created_at)
VALUES (:id, :code, :description, :units, :created_at)
ON CONFLICT (code) DO UPDATE
SET description = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE subjects.description END,
    units = CASE WHEN EXCLUDED.units > 0 THEN EXCLUDED.units ELSE subjects.units END`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return nil, fmt.Errorf("upsert subject: %w", err)
	}

	var existing models.Subject
	if err := r.db.GetContext(ctx, &existing, `SELECT id, code, description, units, created_at FROM subjects WHERE code = $1`, code); err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	return &existing, nil
}

// FindByID loads one subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, `SELECT id, code, description, units, created_at FROM subjects WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// SectionRepository resolves sections by (department, year level, block).
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindOrCreate returns the section for the triple, creating it on first use.
func (r *SectionRepository) FindOrCreate(ctx context.Context, department string, yearLevel int, block string) (*models.Section, error) {
	if department == "" || block == "" {
		return nil, fmt.Errorf("department and block are required")
	}
	section := &models.Section{
		ID:         uuid.NewString(),
		Department: department,
		YearLevel:  yearLevel,
		Block:      block,
		CreatedAt:  time.Now().UTC(),
	}
	const query = `
INSERT INTO sections (id, department, year_level, block, created_at)
VALUES (:id, :department, :year_level, :block, :created_at)
ON CONFLICT (department, year_level, block) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return nil, fmt.Errorf("upsert section: %w", err)
	}

	var existing models.Section
	const selectQuery = `SELECT id, department, year_level, block, created_at FROM sections WHERE department = $1 AND year_level = $2 AND block = $3`
	if err := r.db.GetContext(ctx, &existing, selectQuery, department, yearLevel, block); err != nil {
		return nil, fmt.Errorf("load section: %w", err)
	}
	return &existing, nil
}

// FindByID loads one section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	var section models.Section
	if err := r.db.GetContext(ctx, &section, `SELECT id, department, year_level, block, created_at FROM sections WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &section, nil
}
