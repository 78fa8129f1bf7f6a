package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/completionist/internal/auth"
	"github.com/sakif/completionist/internal/service"
)

// ChecklistHandler manages checklist items under a game.
//
// Item routes are split between the game ("/games/{id}/checklist") for listing
// and creation, and the item itself ("/checklist/{id}") for update and delete —
// an item ID is globally unique, so the game isn't needed to address it.
type ChecklistHandler struct {
	items  *service.ChecklistService
	logger *slog.Logger
}

// NewChecklistHandler creates a ChecklistHandler.
func NewChecklistHandler(items *service.ChecklistService, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{items: items, logger: logger}
}

type addItemRequest struct {
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

// updateItemRequest keeps Order as raw JSON so the handler can tell three
// cases apart:
//
//	key absent        → leave the order alone
//	"order": null     → clear the order
//	"order": 3        → set the order to 3
//
// A plain *int can't distinguish the first two — both decode to nil.
type updateItemRequest struct {
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Order       json.RawMessage `json:"order"`
}

// HandleList returns a game's checklist in display order.
//
// HTTP: GET /api/games/{id}/checklist
func (h *ChecklistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.items.List(r.Context(), userID, gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleAdd creates a checklist item under a game.
//
// HTTP: POST /api/games/{id}/checklist
// REQUEST BODY: {"description": "Defeat Hornet", "order": 3}
func (h *ChecklistHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	item, err := h.items.Add(r.Context(), userID, gameID, service.AddItemInput{
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdate applies a partial update to an item.
//
// HTTP: PATCH /api/checklist/{id}
func (h *ChecklistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	in := service.UpdateItemInput{
		Description: req.Description,
		Completed:   req.Completed,
	}
	// RawMessage is non-nil exactly when the key appeared in the body.
	if req.Order != nil {
		in.SetOrder = true
		if !bytes.Equal(req.Order, []byte("null")) {
			var order int
			if err := json.Unmarshal(req.Order, &order); err != nil {
				http.Error(w, "Invalid order value", http.StatusBadRequest)
				return
			}
			in.Order = &order
		}
	}

	item, err := h.items.Update(r.Context(), userID, itemID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes a checklist item.
//
// HTTP: DELETE /api/checklist/{id}
func (h *ChecklistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.items.Delete(r.Context(), userID, itemID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
