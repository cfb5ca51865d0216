package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/landmark"
	"github.com/rehabmetrics/handrom/internal/store"
)

// newTestHandler creates an AssessmentHandler backed by a temp-dir database
// and the default engine.
func newTestHandler(t *testing.T) (*AssessmentHandler, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "handrom-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	engine := assessment.New(assessment.DefaultConfig())
	return NewAssessmentHandler(s, engine), s
}

// kapandjiFrames is a minimal repetition reaching the index fingertip.
func kapandjiFrames() []landmark.MotionFrame {
	return []landmark.MotionFrame{
		{Timestamp: 0, Landmarks: landmark.OpenHandFrame()},
		{Timestamp: 33, Landmarks: landmark.OppositionFrame()},
	}
}

func TestAssessmentHandler_Create(t *testing.T) {
	handler, s := newTestHandler(t)

	reqBody := createAssessmentRequest{
		Type:   "kapandji",
		Hand:   "Right",
		Frames: kapandjiFrames(),
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response assessmentResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.ID == "" {
		t.Error("expected non-empty ID in response")
	}
	if response.Type != "kapandji" {
		t.Errorf("expected type 'kapandji', got %q", response.Type)
	}
	if response.FrameCount != 2 {
		t.Errorf("expected frame count 2, got %d", response.FrameCount)
	}

	// The full results blob carries the score.
	var results assessment.Results
	if err := json.Unmarshal(response.Results, &results); err != nil {
		t.Fatalf("failed to decode results blob: %v", err)
	}
	if results.Kapandji == nil || results.Kapandji.MaxScore != 2 {
		t.Errorf("expected kapandji score 2 in results, got %+v", results.Kapandji)
	}

	// Verify the assessment was persisted with its headline scalar.
	created, err := s.Assessments().GetByID(response.ID)
	if err != nil {
		t.Fatalf("failed to get created assessment: %v", err)
	}
	if !created.KapandjiScore.Valid || created.KapandjiScore.Int64 != 2 {
		t.Errorf("stored kapandji score mismatch: got %+v", created.KapandjiScore)
	}
	if created.TotalActiveROM.Valid {
		t.Errorf("TotalActiveROM should be NULL for a kapandji assessment")
	}
}

func TestAssessmentHandler_Create_InvalidJSON(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAssessmentHandler_Create_UnknownType(t *testing.T) {
	handler, _ := newTestHandler(t)

	reqBody := createAssessmentRequest{
		Type:   "grip-strength",
		Hand:   "Right",
		Frames: kapandjiFrames(),
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAssessmentHandler_Create_InvalidHand(t *testing.T) {
	handler, _ := newTestHandler(t)

	reqBody := createAssessmentRequest{
		Type:   "kapandji",
		Hand:   "Both",
		Frames: kapandjiFrames(),
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAssessmentHandler_Create_EmptyFrames(t *testing.T) {
	handler, _ := newTestHandler(t)

	reqBody := createAssessmentRequest{Type: "tam", Hand: "Right"}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAssessmentHandler_List(t *testing.T) {
	handler, s := newTestHandler(t)

	record := &store.Assessment{
		ID:         "assessment-1",
		Type:       "tam",
		Hand:       "Right",
		FrameCount: 42,
		Quality:    0.9,
		Results:    `{"type":"tam"}`,
	}
	if err := s.Assessments().Create(record); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/assessments", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listAssessmentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Assessments) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(response.Assessments))
	}
	if response.Assessments[0].ID != "assessment-1" {
		t.Errorf("expected assessment ID 'assessment-1', got %q", response.Assessments[0].ID)
	}
}

func TestAssessmentHandler_List_FilterByType(t *testing.T) {
	handler, s := newTestHandler(t)

	for _, a := range []*store.Assessment{
		{ID: "a-tam", Type: "tam", Hand: "Right", Results: "{}"},
		{ID: "a-kapandji", Type: "kapandji", Hand: "Right", Results: "{}"},
	} {
		if err := s.Assessments().Create(a); err != nil {
			t.Fatalf("failed to create assessment %q: %v", a.ID, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/assessments?type=kapandji", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var response listAssessmentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Assessments) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(response.Assessments))
	}
	if response.Assessments[0].ID != "a-kapandji" {
		t.Errorf("wrong assessment returned: got %q", response.Assessments[0].ID)
	}
}

func TestAssessmentHandler_Get_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAssessmentHandler_Delete(t *testing.T) {
	handler, s := newTestHandler(t)

	record := &store.Assessment{ID: "assessment-1", Type: "tam", Hand: "Right", Results: "{}"}
	if err := s.Assessments().Create(record); err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/assessments/assessment-1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/assessments/assessment-1", nil)
	rec = httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAssessmentHandler_Delete_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/assessments/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAssessmentHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	// PUT is not allowed on the collection endpoint
	req := httptest.NewRequest(http.MethodPut, "/api/assessments", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestBuildRecord_TAMHeadline(t *testing.T) {
	engine := assessment.New(assessment.DefaultConfig())

	frames := make([]landmark.MotionFrame, 0, 20)
	open := landmark.WithVisibility(landmark.OpenHandFrame(), 0.9)
	fist := landmark.WithVisibility(landmark.FistFrame(), 0.9)
	for i := 0; i < 10; i++ {
		frames = append(frames,
			landmark.MotionFrame{Timestamp: int64(2*i) * 33, Landmarks: open, Quality: 1.0},
			landmark.MotionFrame{Timestamp: int64(2*i+1) * 33, Landmarks: fist, Quality: 1.0},
		)
	}

	results, err := engine.Evaluate(assessment.TypeTAM, landmark.HandRight, frames)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	record, err := BuildRecord("record-1", results)
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}

	if !record.TotalActiveROM.Valid {
		t.Fatal("expected TotalActiveROM to be set for a tam assessment")
	}
	if record.TotalActiveROM.Float64 < 260 || record.TotalActiveROM.Float64 > 275 {
		t.Errorf("unexpected headline TAM: %f", record.TotalActiveROM.Float64)
	}
	if record.KapandjiScore.Valid {
		t.Error("KapandjiScore should be NULL for a tam assessment")
	}
	if record.Results == "" {
		t.Error("expected non-empty results blob")
	}
}
