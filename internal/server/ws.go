// Package server provides the HTTP server for the hand ROM assessment service.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/landmark"
	"github.com/rehabmetrics/handrom/internal/rom"
	"github.com/rehabmetrics/handrom/internal/server/api"
	"github.com/rehabmetrics/handrom/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// liveUpdateEvery is how often (in frames) a live ROM update is pushed back
// to the recording client.
const liveUpdateEvery = 5

// MotionHandler receives a recording session's MotionFrames over a WebSocket,
// pushes live smoothed ROM values back while the patient moves, and runs the
// full evaluation when the client signals completion.
type MotionHandler struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewMotionHandler creates a new MotionHandler.
func NewMotionHandler(s *store.Store, e *assessment.Engine) *MotionHandler {
	return &MotionHandler{store: s, engine: e}
}

// motionMessage is the client-to-server message envelope.
type motionMessage struct {
	Type       string                `json:"type"` // "start", "frame" or "complete"
	Assessment string                `json:"assessment,omitempty"`
	Hand       string                `json:"hand,omitempty"`
	Frame      *landmark.MotionFrame `json:"frame,omitempty"`
}

// liveUpdate is pushed back to the client during recording.
type liveUpdate struct {
	Type       string                      `json:"type"` // "live"
	FrameCount int                         `json:"frameCount"`
	ROM        map[landmark.Finger]float64 `json:"rom"`
}

// resultsMessage closes a session.
type resultsMessage struct {
	Type    string              `json:"type"` // "results" or "error"
	ID      string              `json:"id,omitempty"`
	Results *assessment.Results `json:"results,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// ServeHTTP handles WebSocket upgrade requests and runs one recording
// session per connection.
func (h *MotionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runSession(conn)
}

func (h *MotionHandler) runSession(conn *websocket.Conn) {
	var (
		assessmentType assessment.Type
		hand           landmark.Hand
		frames         []landmark.MotionFrame
		totals         map[landmark.Finger][]float64
	)

	romCfg := h.engine.ROMConfig()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg motionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "invalid message")
			continue
		}

		switch msg.Type {
		case "start":
			t, err := assessment.ParseType(msg.Assessment)
			if err != nil {
				h.sendError(conn, err.Error())
				return
			}
			if msg.Hand != string(landmark.HandLeft) && msg.Hand != string(landmark.HandRight) {
				h.sendError(conn, "hand must be \"Left\" or \"Right\"")
				return
			}
			assessmentType = t
			hand = landmark.Hand(msg.Hand)
			frames = frames[:0]
			totals = make(map[landmark.Finger][]float64)

		case "frame":
			if msg.Frame == nil || assessmentType == "" {
				continue
			}
			frames = append(frames, *msg.Frame)
			h.trackLive(totals, msg.Frame, romCfg)

			if len(frames)%liveUpdateEvery == 0 {
				update := liveUpdate{
					Type:       "live",
					FrameCount: len(frames),
					ROM:        make(map[landmark.Finger]float64, len(totals)),
				}
				for finger, values := range totals {
					update.ROM[finger] = rom.SmoothROM(values, romCfg.SmoothingWindow)
				}
				if err := conn.WriteJSON(update); err != nil {
					return
				}
			}

		case "complete":
			h.complete(conn, assessmentType, hand, frames)
			return

		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

// trackLive appends each finger's current total flexion to the live history.
// Malformed or low-confidence frames contribute nothing here; the full
// validation happens at completion.
func (h *MotionHandler) trackLive(totals map[landmark.Finger][]float64, frame *landmark.MotionFrame, cfg rom.Config) {
	for _, finger := range landmark.Fingers() {
		angles, err := rom.CalculateFingerROM(frame.Annotated(), finger, cfg)
		if err != nil {
			return
		}
		totals[finger] = append(totals[finger], angles.TotalActiveROM)
	}
}

func (h *MotionHandler) complete(conn *websocket.Conn, t assessment.Type, hand landmark.Hand, frames []landmark.MotionFrame) {
	if t == "" {
		h.sendError(conn, "session was never started")
		return
	}

	results, err := h.engine.Evaluate(t, hand, frames)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	record, err := api.BuildRecord(uuid.NewString(), results)
	if err != nil {
		h.sendError(conn, "failed to encode results")
		return
	}
	if err := h.store.Assessments().Create(record); err != nil {
		slog.Error("failed to persist assessment", "error", err, "type", string(t))
		h.sendError(conn, "failed to save assessment")
		return
	}

	conn.WriteJSON(resultsMessage{Type: "results", ID: record.ID, Results: results})
}

func (h *MotionHandler) sendError(conn *websocket.Conn, message string) {
	conn.WriteJSON(resultsMessage{Type: "error", Error: message})
}
