package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/feed"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
)

// MovementHandler handles HTTP requests for the movement ledger
type MovementHandler struct {
	createHandler   *command.CreateMovementHandler
	updateHandler   *command.UpdateMovementHandler
	deleteHandler   *command.DeleteMovementHandler
	completeHandler *command.CompleteMovementHandler
	getHandler      *query.GetMovementHandler
	listHandler     *query.ListMovementsHandler
	recentHandler   *query.RecentMovementsHandler
	byDateHandler   *query.MovementsByDateHandler
	hub             *feed.Hub
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(
	createHandler *command.CreateMovementHandler,
	updateHandler *command.UpdateMovementHandler,
	deleteHandler *command.DeleteMovementHandler,
	completeHandler *command.CompleteMovementHandler,
	getHandler *query.GetMovementHandler,
	listHandler *query.ListMovementsHandler,
	recentHandler *query.RecentMovementsHandler,
	byDateHandler *query.MovementsByDateHandler,
	hub *feed.Hub,
) *MovementHandler {
	return &MovementHandler{
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		deleteHandler:   deleteHandler,
		completeHandler: completeHandler,
		getHandler:      getHandler,
		listHandler:     listHandler,
		recentHandler:   recentHandler,
		byDateHandler:   byDateHandler,
		hub:             hub,
	}
}

type createMovementRequest struct {
	ItemID         string `json:"item_id"`
	Type           string `json:"type"`
	Quantity       int64  `json:"quantity"`
	SourceLocation string `json:"source_location"`
	DestLocation   string `json:"dest_location"`
	Notes          string `json:"notes"`
	ActorID        string `json:"actor_id"`
	Status         string `json:"status"`
}

type updateMovementRequest struct {
	Type           string `json:"type"`
	Quantity       int64  `json:"quantity"`
	SourceLocation string `json:"source_location"`
	DestLocation   string `json:"dest_location"`
	Notes          string `json:"notes"`
	ActorID        string `json:"actor_id"`
}

type actorRequest struct {
	ActorID string `json:"actor_id"`
}

// CreateMovement handles POST /api/movements
// @Summary Record a movement
// @Description Applies the movement to its item and appends it to the ledger in one commit
// @Tags Movements
// @Accept json
// @Produce json
// @Param request body createMovementRequest true "Movement"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response "Insufficient stock"
// @Failure 503 {object} Response "Commit retries exhausted"
// @Router /api/movements [post]
func (h *MovementHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	m, err := h.createHandler.Handle(r.Context(), command.CreateMovementCommand{
		ItemID:         req.ItemID,
		Type:           req.Type,
		Quantity:       req.Quantity,
		SourceLocation: req.SourceLocation,
		DestLocation:   req.DestLocation,
		Notes:          req.Notes,
		ActorID:        actorFor(r, req.ActorID),
		Status:         req.Status,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Movement recorded successfully",
		Data:    m,
	})
}

// ListMovements handles GET /api/movements
// @Summary Page through the ledger
// @Description Newest first. Pass next_cursor from the previous page to continue.
// @Tags Movements
// @Produce json
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Param item_id query string false "Only movements of this item"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/movements [get]
func (h *MovementHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := h.listHandler.Handle(r.Context(), query.ListMovementsQuery{
		PageSize: pageSize,
		Cursor:   r.URL.Query().Get("cursor"),
		ItemID:   r.URL.Query().Get("item_id"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// RecentMovements handles GET /api/movements/recent
// @Summary Newest movements
// @Tags Movements
// @Produce json
// @Param limit query int false "Number of movements (default 5)"
// @Success 200 {object} Response
// @Router /api/movements/recent [get]
func (h *MovementHandler) RecentMovements(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, err)
		return
	}

	records, err := h.recentHandler.Handle(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// MovementsByDate handles GET /api/movements/range
// @Summary Movements in a time range
// @Tags Movements
// @Produce json
// @Param start query string true "RFC3339 start, inclusive"
// @Param end query string true "RFC3339 end, inclusive"
// @Param limit query int false "Maximum number of movements (default and cap 1000)"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/movements/range [get]
func (h *MovementHandler) MovementsByDate(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		respondBadRequest(w, "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		respondBadRequest(w, "end must be an RFC3339 timestamp")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, err)
		return
	}

	records, err := h.byDateHandler.Handle(r.Context(), query.MovementsByDateQuery{Start: start, End: end, Limit: limit})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// GetMovement handles GET /api/movements/{id}
// @Summary Get a movement
// @Tags Movements
// @Produce json
// @Param id path string true "Movement ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/movements/{id} [get]
func (h *MovementHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	m, err := h.getHandler.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    m,
	})
}

// UpdateMovement handles PUT /api/movements/{id}
// @Summary Rewrite a movement
// @Description Reverses the old effect and applies the new one in one commit
// @Tags Movements
// @Accept json
// @Produce json
// @Param id path string true "Movement ID"
// @Param request body updateMovementRequest true "New fields"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Failure 503 {object} Response
// @Router /api/movements/{id} [put]
func (h *MovementHandler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	var req updateMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	m, err := h.updateHandler.Handle(r.Context(), command.UpdateMovementCommand{
		MovementID:     mux.Vars(r)["id"],
		Type:           req.Type,
		Quantity:       req.Quantity,
		SourceLocation: req.SourceLocation,
		DestLocation:   req.DestLocation,
		Notes:          req.Notes,
		ActorID:        actorFor(r, req.ActorID),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Movement updated successfully",
		Data:    m,
	})
}

// DeleteMovement handles DELETE /api/movements/{id}
// @Summary Delete a movement
// @Description Reverses the movement's effect and removes it from the ledger
// @Tags Movements
// @Produce json
// @Param id path string true "Movement ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Failure 503 {object} Response
// @Router /api/movements/{id} [delete]
func (h *MovementHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	err := h.deleteHandler.Handle(r.Context(), command.DeleteMovementCommand{
		MovementID: mux.Vars(r)["id"],
		ActorID:    ActorFromContext(r.Context()),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Movement deleted successfully",
	})
}

// CompleteMovement handles POST /api/movements/{id}/complete
// @Summary Complete a pending movement
// @Tags Movements
// @Accept json
// @Produce json
// @Param id path string true "Movement ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/movements/{id}/complete [post]
func (h *MovementHandler) CompleteMovement(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		respondBadRequest(w, "Invalid request body")
		return
	}

	m, err := h.completeHandler.Handle(r.Context(), command.CompleteMovementCommand{
		MovementID: mux.Vars(r)["id"],
		ActorID:    actorFor(r, req.ActorID),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Movement completed",
		Data:    m,
	})
}

// StreamMovements handles GET /api/movements/stream
// @Summary Live ledger
// @Description Server-sent events; each "movements" event carries the newest page
// @Tags Movements
// @Produce text/event-stream
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {string} string "event stream"
// @Router /api/movements/stream [get]
func (h *MovementHandler) StreamMovements(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		respondError(w, r, err)
		return
	}

	sub, err := h.hub.SubscribeMovements(r.Context(), pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	streamEvents[[]domain.MovementRecord](w, r, "movements", sub)
}

// RegisterRoutes registers all movement routes
func (h *MovementHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/movements", h.ListMovements).Methods("GET")
	router.HandleFunc("/api/movements", h.CreateMovement).Methods("POST")
	router.HandleFunc("/api/movements/recent", h.RecentMovements).Methods("GET")
	router.HandleFunc("/api/movements/range", h.MovementsByDate).Methods("GET")
	router.HandleFunc("/api/movements/stream", h.StreamMovements).Methods("GET")
	router.HandleFunc("/api/movements/{id}", h.GetMovement).Methods("GET")
	router.HandleFunc("/api/movements/{id}", h.UpdateMovement).Methods("PUT")
	router.HandleFunc("/api/movements/{id}", h.DeleteMovement).Methods("DELETE")
	router.HandleFunc("/api/movements/{id}/complete", h.CompleteMovement).Methods("POST")
}
