package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/inventory/feed"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
)

// InventoryHandler handles HTTP requests for inventory items
type InventoryHandler struct {
	createHandler   *command.CreateInventoryHandler
	updateHandler   *command.UpdateItemHandler
	deleteHandler   *command.DeleteInventoryHandler
	getHandler      *query.GetInventoryHandler
	listHandler     *query.ListInventoryHandler
	lowStockHandler *query.CheckLowStockHandler
	hub             *feed.Hub
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	createHandler *command.CreateInventoryHandler,
	updateHandler *command.UpdateItemHandler,
	deleteHandler *command.DeleteInventoryHandler,
	getHandler *query.GetInventoryHandler,
	listHandler *query.ListInventoryHandler,
	lowStockHandler *query.CheckLowStockHandler,
	hub *feed.Hub,
) *InventoryHandler {
	return &InventoryHandler{
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		deleteHandler:   deleteHandler,
		getHandler:      getHandler,
		listHandler:     listHandler,
		lowStockHandler: lowStockHandler,
		hub:             hub,
	}
}

type createInventoryRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Location  string          `json:"location"`
	Threshold int64           `json:"threshold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ActorID   string          `json:"actor_id"`
}

type updateInventoryRequest struct {
	Name      *string          `json:"name"`
	Threshold *int64           `json:"threshold"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	ActorID   string           `json:"actor_id"`
}

// CreateInventory handles POST /api/inventory
// @Summary Create an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param request body createInventoryRequest true "Item"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/inventory [post]
func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	item, err := h.createHandler.Handle(r.Context(), command.CreateInventoryCommand{
		ID:        req.ID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Location:  req.Location,
		Threshold: req.Threshold,
		UnitPrice: req.UnitPrice,
		ActorID:   actorFor(r, req.ActorID),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Inventory item created successfully",
		Data:    item,
	})
}

// GetInventory handles GET /api/inventory/{id}
// @Summary Get an inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/{id} [get]
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	item, err := h.getHandler.Handle(r.Context(), query.GetInventoryQuery{ID: mux.Vars(r)["id"]})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    item,
	})
}

// ListInventory handles GET /api/inventory
// @Summary List inventory items
// @Tags Inventory
// @Produce json
// @Param location query string false "FRONT or BACK"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/inventory [get]
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.listHandler.Handle(r.Context(), query.ListInventoryQuery{
		Location: r.URL.Query().Get("location"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    items,
	})
}

// UpdateInventory handles PATCH /api/inventory/{id}
// @Summary Update item attributes
// @Description Quantity and location can only change through movements
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body updateInventoryRequest true "Attributes"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/{id} [patch]
func (h *InventoryHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req updateInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	item, err := h.updateHandler.Handle(r.Context(), command.UpdateItemCommand{
		ID:        mux.Vars(r)["id"],
		Name:      req.Name,
		Threshold: req.Threshold,
		UnitPrice: req.UnitPrice,
		ActorID:   actorFor(r, req.ActorID),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Inventory item updated successfully",
		Data:    item,
	})
}

// DeleteInventory handles DELETE /api/inventory/{id}
// @Summary Delete an inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/inventory/{id} [delete]
func (h *InventoryHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteInventoryCommand{ID: mux.Vars(r)["id"]}); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Inventory item deleted successfully",
	})
}

// LowStock handles GET /api/inventory/low-stock
// @Summary Items at or under their threshold
// @Tags Inventory
// @Produce json
// @Success 200 {object} Response
// @Router /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.lowStockHandler.Handle(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    items,
	})
}

// StreamInventory handles GET /api/inventory/stream
// @Summary Live inventory list
// @Description Server-sent events; each "inventory" event carries the full item list
// @Tags Inventory
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/inventory/stream [get]
func (h *InventoryHandler) StreamInventory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.SubscribeInventory(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	streamEvents(w, r, "inventory", sub)
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory", h.ListInventory).Methods("GET")
	router.HandleFunc("/api/inventory", h.CreateInventory).Methods("POST")
	router.HandleFunc("/api/inventory/low-stock", h.LowStock).Methods("GET")
	router.HandleFunc("/api/inventory/stream", h.StreamInventory).Methods("GET")
	router.HandleFunc("/api/inventory/{id}", h.GetInventory).Methods("GET")
	router.HandleFunc("/api/inventory/{id}", h.UpdateInventory).Methods("PATCH")
	router.HandleFunc("/api/inventory/{id}", h.DeleteInventory).Methods("DELETE")
}
