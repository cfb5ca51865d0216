package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Assessment is one persisted assessment outcome. Results holds the full
// JSON results structure as produced by the engine; the nullable scalar
// fields mirror the headline numbers of the relevant assessment type.
type Assessment struct {
	ID              string
	Type            string
	Hand            string
	FrameCount      int
	Quality         float64
	TotalActiveROM  sql.NullFloat64
	KapandjiScore   sql.NullInt64
	WristFlexion    sql.NullFloat64
	WristExtension  sql.NullFloat64
	RadialDeviation sql.NullFloat64
	UlnarDeviation  sql.NullFloat64
	Results         string
	CreatedAt       time.Time
}

// AssessmentRepository provides CRUD operations for assessments.
type AssessmentRepository struct {
	db *sql.DB
}

// Assessments returns the assessment repository for this store.
func (s *Store) Assessments() *AssessmentRepository {
	return &AssessmentRepository{db: s.db}
}

// Create inserts a new assessment into the database.
func (r *AssessmentRepository) Create(a *Assessment) error {
	a.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO assessments (id, type, hand, frame_count, quality,
			total_active_rom, kapandji_score, wrist_flexion, wrist_extension,
			radial_deviation, ulnar_deviation, results, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.Hand, a.FrameCount, a.Quality,
		a.TotalActiveROM, a.KapandjiScore, a.WristFlexion, a.WristExtension,
		a.RadialDeviation, a.UlnarDeviation, a.Results, a.CreatedAt,
	)
	return err
}

const assessmentColumns = `id, type, hand, frame_count, quality,
	total_active_rom, kapandji_score, wrist_flexion, wrist_extension,
	radial_deviation, ulnar_deviation, results, created_at`

func scanAssessment(row interface{ Scan(...any) error }) (*Assessment, error) {
	a := &Assessment{}
	err := row.Scan(&a.ID, &a.Type, &a.Hand, &a.FrameCount, &a.Quality,
		&a.TotalActiveROM, &a.KapandjiScore, &a.WristFlexion, &a.WristExtension,
		&a.RadialDeviation, &a.UlnarDeviation, &a.Results, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an assessment by its ID.
func (r *AssessmentRepository) GetByID(id string) (*Assessment, error) {
	row := r.db.QueryRow(
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id,
	)

	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves all assessments, newest first.
func (r *AssessmentRepository) List() ([]*Assessment, error) {
	rows, err := r.db.Query(
		`SELECT ` + assessmentColumns + ` FROM assessments ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assessments, nil
}

// ListByType retrieves all assessments of one type, newest first.
func (r *AssessmentRepository) ListByType(assessmentType string) ([]*Assessment, error) {
	rows, err := r.db.Query(
		`SELECT `+assessmentColumns+` FROM assessments
		 WHERE type = ? ORDER BY created_at DESC`,
		assessmentType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assessments, nil
}

// Delete removes an assessment by its ID.
func (r *AssessmentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
