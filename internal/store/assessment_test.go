package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a new Store backed by a temp-dir database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "handrom-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func testAssessment(id string) *Assessment {
	return &Assessment{
		ID:             id,
		Type:           "tam",
		Hand:           "Right",
		FrameCount:     142,
		Quality:        0.94,
		TotalActiveROM: sql.NullFloat64{Float64: 238.5, Valid: true},
		Results:        `{"type":"tam","hand":"Right"}`,
	}
}

func TestAssessmentRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	a := testAssessment("assessment-1")

	if err := repo.Create(a); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	retrieved, err := repo.GetByID("assessment-1")
	if err != nil {
		t.Fatalf("failed to get assessment by ID: %v", err)
	}

	if retrieved.Type != a.Type {
		t.Errorf("Type mismatch: got %q, want %q", retrieved.Type, a.Type)
	}
	if retrieved.Hand != a.Hand {
		t.Errorf("Hand mismatch: got %q, want %q", retrieved.Hand, a.Hand)
	}
	if retrieved.FrameCount != a.FrameCount {
		t.Errorf("FrameCount mismatch: got %d, want %d", retrieved.FrameCount, a.FrameCount)
	}
	if retrieved.Quality != a.Quality {
		t.Errorf("Quality mismatch: got %f, want %f", retrieved.Quality, a.Quality)
	}
	if retrieved.TotalActiveROM != a.TotalActiveROM {
		t.Errorf("TotalActiveROM mismatch: got %v, want %v", retrieved.TotalActiveROM, a.TotalActiveROM)
	}
	if retrieved.Results != a.Results {
		t.Errorf("Results mismatch: got %q, want %q", retrieved.Results, a.Results)
	}
}

func TestAssessmentRepository_Create_NullScalars(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	// A kapandji assessment carries its score but no ROM or wrist scalars.
	a := &Assessment{
		ID:            "assessment-kapandji",
		Type:          "kapandji",
		Hand:          "Left",
		FrameCount:    60,
		Quality:       1.0,
		KapandjiScore: sql.NullInt64{Int64: 8, Valid: true},
		Results:       `{"type":"kapandji"}`,
	}

	if err := repo.Create(a); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	retrieved, err := repo.GetByID("assessment-kapandji")
	if err != nil {
		t.Fatalf("failed to get assessment: %v", err)
	}

	if !retrieved.KapandjiScore.Valid || retrieved.KapandjiScore.Int64 != 8 {
		t.Errorf("KapandjiScore mismatch: got %v", retrieved.KapandjiScore)
	}
	if retrieved.TotalActiveROM.Valid {
		t.Errorf("TotalActiveROM should be NULL, got %v", retrieved.TotalActiveROM)
	}
	if retrieved.WristFlexion.Valid {
		t.Errorf("WristFlexion should be NULL, got %v", retrieved.WristFlexion)
	}
}

func TestAssessmentRepository_Create_InvalidHand(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	a := testAssessment("assessment-bad-hand")
	a.Hand = "Both"

	if err := repo.Create(a); err == nil {
		t.Error("creating an assessment with an invalid hand should fail")
	}
}

func TestAssessmentRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	ids := []string{"assessment-1", "assessment-2", "assessment-3"}
	for _, id := range ids {
		if err := repo.Create(testAssessment(id)); err != nil {
			t.Fatalf("failed to create assessment %q: %v", id, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list assessments: %v", err)
	}

	if len(list) != len(ids) {
		t.Errorf("expected %d assessments, got %d", len(ids), len(list))
	}

	idMap := make(map[string]bool)
	for _, a := range list {
		idMap[a.ID] = true
	}
	for _, id := range ids {
		if !idMap[id] {
			t.Errorf("assessment %q not found in list", id)
		}
	}
}

func TestAssessmentRepository_ListByType(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	tam := testAssessment("assessment-tam")
	if err := repo.Create(tam); err != nil {
		t.Fatalf("failed to create tam assessment: %v", err)
	}

	kapandji := testAssessment("assessment-kapandji")
	kapandji.Type = "kapandji"
	kapandji.TotalActiveROM = sql.NullFloat64{}
	kapandji.KapandjiScore = sql.NullInt64{Int64: 6, Valid: true}
	if err := repo.Create(kapandji); err != nil {
		t.Fatalf("failed to create kapandji assessment: %v", err)
	}

	list, err := repo.ListByType("kapandji")
	if err != nil {
		t.Fatalf("failed to list by type: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("expected 1 kapandji assessment, got %d", len(list))
	}
	if list[0].ID != "assessment-kapandji" {
		t.Errorf("wrong assessment returned: got %q", list[0].ID)
	}
}

func TestAssessmentRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	if err := repo.Create(testAssessment("assessment-1")); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	if err := repo.Delete("assessment-1"); err != nil {
		t.Fatalf("failed to delete assessment: %v", err)
	}

	_, err := repo.GetByID("assessment-1")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestAssessmentRepository_Delete_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	err := repo.Delete("non-existent-id")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound for non-existent assessment, got: %v", err)
	}
}

func TestAssessmentRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Assessments()

	_, err := repo.GetByID("non-existent-id")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
