// Package api provides HTTP API handlers for the hand ROM assessment service.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/landmark"
	"github.com/rehabmetrics/handrom/internal/store"
)

// AssessmentHandler handles HTTP requests for assessment resources.
type AssessmentHandler struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(s *store.Store, e *assessment.Engine) *AssessmentHandler {
	return &AssessmentHandler{store: s, engine: e}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *AssessmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/assessments or /api/assessments/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/assessments")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createAssessmentRequest struct {
	Type   string                 `json:"type"`
	Hand   string                 `json:"hand"`
	Frames []landmark.MotionFrame `json:"frames"`
}

type assessmentResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Hand       string          `json:"hand"`
	FrameCount int             `json:"frameCount"`
	Quality    float64         `json:"quality"`
	Results    json.RawMessage `json:"results"`
	CreatedAt  string          `json:"created_at"`
}

type listAssessmentsResponse struct {
	Assessments []assessmentResponse `json:"assessments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Assessment to an assessmentResponse.
func toResponse(a *store.Assessment) assessmentResponse {
	return assessmentResponse{
		ID:         a.ID,
		Type:       a.Type,
		Hand:       a.Hand,
		FrameCount: a.FrameCount,
		Quality:    a.Quality,
		Results:    json.RawMessage(a.Results),
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// create handles POST /api/assessments: evaluates a recorded repetition and
// persists the outcome.
func (h *AssessmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assessmentType, err := assessment.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hand := landmark.Hand(req.Hand)
	if hand != landmark.HandLeft && hand != landmark.HandRight {
		writeError(w, http.StatusBadRequest, "hand must be \"Left\" or \"Right\"")
		return
	}

	results, err := h.engine.EvaluateContext(r.Context(), assessmentType, hand, req.Frames)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := BuildRecord(uuid.NewString(), results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode results")
		return
	}

	if err := h.store.Assessments().Create(record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save assessment")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(record))
}

// list handles GET /api/assessments, optionally filtered by ?type=.
func (h *AssessmentHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		assessments []*store.Assessment
		err         error
	)

	if t := r.URL.Query().Get("type"); t != "" {
		assessments, err = h.store.Assessments().ListByType(t)
	} else {
		assessments, err = h.store.Assessments().List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}

	resp := listAssessmentsResponse{Assessments: make([]assessmentResponse, 0, len(assessments))}
	for _, a := range assessments {
		resp.Assessments = append(resp.Assessments, toResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/assessments/{id}.
func (h *AssessmentHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Assessments().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "assessment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load assessment")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(a))
}

// delete handles DELETE /api/assessments/{id}.
func (h *AssessmentHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Assessments().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "assessment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete assessment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BuildRecord converts engine results into a persistable assessment row,
// filling the scalar columns relevant to the assessment type.
func BuildRecord(id string, results *assessment.Results) (*store.Assessment, error) {
	blob, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	record := &store.Assessment{
		ID:         id,
		Type:       string(results.Type),
		Hand:       string(results.Hand),
		FrameCount: results.FrameCount,
		Quality:    results.Quality,
		Results:    string(blob),
	}

	if len(results.Fingers) > 0 {
		// Headline TAM: the mean over the fingers the assessment covers.
		sum := 0.0
		for _, angles := range results.Fingers {
			sum += angles.TotalActiveROM
		}
		record.TotalActiveROM = sql.NullFloat64{
			Float64: sum / float64(len(results.Fingers)),
			Valid:   true,
		}
	}

	if results.Kapandji != nil {
		record.KapandjiScore = sql.NullInt64{Int64: int64(results.Kapandji.MaxScore), Valid: true}
	}

	if results.Wrist != nil && results.Wrist.Available {
		record.WristFlexion = sql.NullFloat64{Float64: results.Wrist.WristFlexionAngle, Valid: true}
		record.WristExtension = sql.NullFloat64{Float64: results.Wrist.WristExtensionAngle, Valid: true}
	}

	if results.Deviation != nil && results.Deviation.Available {
		record.RadialDeviation = sql.NullFloat64{Float64: results.Deviation.RadialDeviation, Valid: true}
		record.UlnarDeviation = sql.NullFloat64{Float64: results.Deviation.UlnarDeviation, Valid: true}
	}

	return record, nil
}
