/*
handlers.go - HTTP handlers for the storefront action surface

PURPOSE:
  Exposes the ledger and entitlement engine over REST. Handlers parse and
  validate input at the boundary, delegate to the engine's transitions, and
  map typed engine errors onto HTTP statuses.

ENDPOINTS:
  Session:
    POST   /api/auth/login            Open a session by email or phone
    POST   /api/auth/register         Register and open a session
    POST   /api/auth/logout           Close the session
    GET    /api/session               Current session user

  Users (admin):
    GET    /api/users                 Role-ranked user listing
    POST   /api/users/{id}/role       Change a user's role (policy-gated)
    POST   /api/users/{id}/balance    Clamping manual balance adjustment

  Lessons:
    GET    /api/lessons               Catalog
    POST   /api/lessons               (admin) Create lesson
    DELETE /api/lessons/{id}          (admin) Remove lesson
    POST   /api/lessons/{id}/purchase Purchase for the session user
    GET    /api/lessons/{id}/access   Ownership + quota summary
    POST   /api/lessons/{id}/views    Count one playback session start
    GET    /api/lessons/{id}/companion  Best-effort AI summary + quiz

  Deposits:
    POST   /api/deposits              File a top-up request (amount > 0)
    GET    /api/deposits              (admin) All requests, pending first
    POST   /api/deposits/{id}/approve (admin)
    POST   /api/deposits/{id}/reject  (admin)

ERROR HANDLING:
  - 400: malformed input, invalid amounts/roles
  - 401: operation requires a session
  - 403: policy denial, exhausted view quota
  - 404: unknown user/lesson/request
  - 409: identity clash, re-purchase, re-processing a decided request
  - 500: persistence failures

SESSION MODEL:
  The engine serves a single UI session (one logical writer); the session
  user lives inside the aggregate and the server trusts its one client.
  There is no token layer here by design.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NOUR0003/star-academy/content"
	"github.com/NOUR0003/star-academy/engine"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Handler holds the dependencies of the HTTP layer.
type Handler struct {
	Engine    *engine.Engine
	Companion *content.Client
}

// NewHandler wires the engine and the companion client. A nil companion is
// treated as disabled.
func NewHandler(eng *engine.Engine, companion *content.Client) *Handler {
	if companion == nil {
		companion = content.New("", "", 0)
	}
	return &Handler{Engine: eng, Companion: companion}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, engine.ErrPermissionDenied),
		errors.Is(err, engine.ErrViewLimitExceeded):
		status = http.StatusForbidden
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorDTO{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "invalid request body"})
		return false
	}
	return true
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Login resolves an email or phone and opens the session. The password
// field, if present, is ignored.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Identifier == "" {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "identifier is required"})
		return
	}
	user, err := h.Engine.Login(r.Context(), req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// Register creates a student account and opens the session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "username, email and phone are required"})
		return
	}
	user, err := h.Engine.Register(r.Context(), engine.Candidate{
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		FullName:    req.FullName,
		FatherPhone: req.FatherPhone,
		MotherPhone: req.MotherPhone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// Logout closes the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the session user, or 204 when logged out.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Engine.CurrentUser()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// USER HANDLERS (admin)
// =============================================================================

// ListUsers returns all users ranked OWNER, ADMIN, STUDENT.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.Engine.Users()
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, out)
}

// ChangeRole sets the target's role, subject to the access policy.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	targetID := engine.UserID(chi.URLParam(r, "id"))
	if err := h.Engine.ChangeUserRole(r.Context(), targetID, engine.Role(req.Role)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustBalance applies a clamping manual balance change.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req DeltaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	targetID := engine.UserID(chi.URLParam(r, "id"))
	if err := h.Engine.AdjustBalance(r.Context(), targetID, engine.Amount{Value: req.Delta}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LESSON HANDLERS
// =============================================================================

// ListLessons returns the catalog.
func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons := h.Engine.Lessons()
	out := make([]LessonDTO, len(lessons))
	for i, l := range lessons {
		out[i] = toLessonDTO(l)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateLesson adds a catalog entry.
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "title is required"})
		return
	}
	if req.ViewLimit < 1 {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "viewLimit must be at least 1"})
		return
	}
	if req.Price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "price cannot be negative"})
		return
	}
	lesson, err := h.Engine.AddLesson(r.Context(), engine.LessonDraft{
		Title:        req.Title,
		Description:  req.Description,
		Price:        engine.Amount{Value: req.Price},
		ViewLimit:    req.ViewLimit,
		VideoRef:     req.VideoRef,
		ThumbnailRef: req.ThumbnailRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLessonDTO(lesson))
}

// DeleteLesson removes a lesson from the catalog. Entitlement records that
// reference it are retained.
func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id := engine.LessonID(chi.URLParam(r, "id"))
	if err := h.Engine.RemoveLesson(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PurchaseLesson buys the lesson for the session user.
func (h *Handler) PurchaseLesson(w http.ResponseWriter, r *http.Request) {
	id := engine.LessonID(chi.URLParam(r, "id"))
	if err := h.Engine.PurchaseLesson(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	user, _ := h.Engine.CurrentUser()
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// GetAccess summarizes the session user's standing on the lesson.
func (h *Handler) GetAccess(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Engine.CurrentUser()
	if !ok {
		writeError(w, engine.ErrNoSession)
		return
	}
	id := engine.LessonID(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.Engine.Access(user.ID, id))
}

// RecordView counts one playback session start. The gate is checked before
// counting: a consumption attempt past the quota is refused, never clamped
// into the counter.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Engine.CurrentUser()
	if !ok {
		writeError(w, engine.ErrNoSession)
		return
	}
	id := engine.LessonID(chi.URLParam(r, "id"))
	if !h.Engine.CanConsume(user.ID, id) {
		writeError(w, engine.ErrViewLimitExceeded)
		return
	}
	if err := h.Engine.RecordConsumption(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Access(user.ID, id))
}

// GetCompanion serves the AI summary and quiz for a lesson the session user
// owns. Best-effort: failures degrade to the fixed fallback.
func (h *Handler) GetCompanion(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Engine.CurrentUser()
	if !ok {
		writeError(w, engine.ErrNoSession)
		return
	}
	id := engine.LessonID(chi.URLParam(r, "id"))
	lesson, found := h.Engine.Lesson(id)
	if !found {
		writeError(w, engine.ErrLessonNotFound)
		return
	}
	if !user.Owns(id) {
		writeError(w, &engine.PermissionDeniedError{Reason: "lesson not purchased"})
		return
	}
	writeJSON(w, http.StatusOK, h.Companion.Generate(r.Context(), lesson.Title, lesson.Description))
}

// =============================================================================
// DEPOSIT HANDLERS
// =============================================================================

// CreateDeposit files a top-up request for the session user. Positivity is
// enforced here, at the caller-facing boundary.
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req CreateDepositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "amount must be positive"})
		return
	}
	dep, err := h.Engine.RequestDeposit(r.Context(), engine.Amount{Value: req.Amount})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDepositDTO(dep))
}

// ListDeposits returns all requests, pending first.
func (h *Handler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	deps := h.Engine.Deposits()
	out := make([]DepositDTO, len(deps))
	for i, d := range deps {
		out[i] = toDepositDTO(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// ApproveDeposit approves a PENDING request, crediting the requester.
func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	h.processDeposit(w, r, true)
}

// RejectDeposit rejects a PENDING request without any balance change.
func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	h.processDeposit(w, r, false)
}

func (h *Handler) processDeposit(w http.ResponseWriter, r *http.Request, approve bool) {
	id := engine.DepositID(chi.URLParam(r, "id"))
	if err := h.Engine.ProcessDeposit(r.Context(), id, approve); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
