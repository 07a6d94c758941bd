package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	Title string    `json:"title"`
	Kind  string    `json:"kind"`
	Date  time.Time `json:"date"`
}

// SetAttendanceRequest is the request body for marking one attendance.
type SetAttendanceRequest struct {
	Present bool `json:"present"`
}

// SetJustificationRequest is the request body for excusing an absence.
type SetJustificationRequest struct {
	Justification string `json:"justification"`
}

// MarkAllRequest is the request body for bulk attendance marking.
type MarkAllRequest struct {
	Present bool `json:"present"`
}

// EventsHandler handles event and attendance endpoints.
type EventsHandler struct {
	eventService      services.EventService
	attendanceService services.AttendanceService
	logger            *zap.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(eventService services.EventService, attendanceService services.AttendanceService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		eventService:      eventService,
		attendanceService: attendanceService,
		logger:            logger,
	}
}

// RegisterRoutes registers the events handler's routes on the given mux.
func (h *EventsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/events", authMiddleware.RequireAdmin(h.Create))
	mux.HandleFunc("GET /api/events", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/events/{id}/attendance", authMiddleware.RequireAdmin(h.Roster))
	mux.HandleFunc("PUT /api/events/{id}/attendance/{memberId}", authMiddleware.RequireAdmin(h.SetAttendance))
	mux.HandleFunc("PUT /api/events/{id}/attendance/{memberId}/justification", authMiddleware.RequireAdmin(h.SetJustification))
	mux.HandleFunc("POST /api/events/{id}/attendance/mark-all", authMiddleware.RequireAdmin(h.MarkAll))
	mux.HandleFunc("GET /api/reports/attendance", authMiddleware.RequireAuth(h.AttendanceReport))
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Title == "" || req.Date.IsZero() {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_fields", "Title and date are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	event := &models.Event{Title: req.Title, Kind: models.EventKind(req.Kind), Date: req.Date}
	if err := h.eventService.Create(r.Context(), viewer, event); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, event); err != nil {
		h.logger.Error("Failed to encode event response", zap.Error(err))
	}
}

// List handles GET /api/events.
// Query parameters from and to bound the range; default is the last year.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	events, err := h.eventService.ListRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, events); err != nil {
		h.logger.Error("Failed to encode events response", zap.Error(err))
	}
}

// Roster handles GET /api/events/{id}/attendance.
func (h *EventsHandler) Roster(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	eventID, ok := h.pathUUID(w, r, "id", "invalid_event_id", "Invalid event ID format")
	if !ok {
		return
	}

	roster, err := h.eventService.Roster(r.Context(), viewer, eventID)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, roster); err != nil {
		h.logger.Error("Failed to encode roster response", zap.Error(err))
	}
}

// SetAttendance handles PUT /api/events/{id}/attendance/{memberId}.
func (h *EventsHandler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathUUID(w, r, "id", "invalid_event_id", "Invalid event ID format")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(w, r, "memberId", "invalid_member_id", "Invalid member ID format")
	if !ok {
		return
	}

	var req SetAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.attendanceService.SetAttended(r.Context(), eventID, memberID, req.Present); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// SetJustification handles PUT /api/events/{id}/attendance/{memberId}/justification.
func (h *EventsHandler) SetJustification(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathUUID(w, r, "id", "invalid_event_id", "Invalid event ID format")
	if !ok {
		return
	}
	memberID, ok := h.pathUUID(w, r, "memberId", "invalid_member_id", "Invalid member ID format")
	if !ok {
		return
	}

	var req SetJustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.attendanceService.SetJustification(r.Context(), eventID, memberID, req.Justification); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// MarkAll handles POST /api/events/{id}/attendance/mark-all.
func (h *EventsHandler) MarkAll(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathUUID(w, r, "id", "invalid_event_id", "Invalid event ID format")
	if !ok {
		return
	}

	var req MarkAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.attendanceService.MarkAll(r.Context(), eventID, req.Present); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AttendanceReport handles GET /api/reports/attendance.
// With ?member={id} it reports one member; with ?rank={rank} it reports
// every current member of that rank (elevated viewers only).
func (h *EventsHandler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	if rawMember := r.URL.Query().Get("member"); rawMember != "" {
		memberID, err := uuid.Parse(rawMember)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		stats, err := h.attendanceService.ReportForMember(r.Context(), memberID, from, to)
		if err != nil {
			writeServiceError(h.logger, w, err)
			return
		}
		if err := WriteJSON(w, http.StatusOK, stats); err != nil {
			h.logger.Error("Failed to encode report response", zap.Error(err))
		}
		return
	}

	rank := models.Rank(r.URL.Query().Get("rank"))
	report, err := h.attendanceService.ReportByRank(r.Context(), viewer, rank, from, to)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to encode report response", zap.Error(err))
	}
}

func (h *EventsHandler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_range", "from must be RFC 3339"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_range", "to must be RFC 3339"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}

	return from, to, true
}

func (h *EventsHandler) pathUUID(w http.ResponseWriter, r *http.Request, param, code, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(param))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
