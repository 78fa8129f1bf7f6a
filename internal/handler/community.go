package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/completionist/internal/auth"
	"github.com/sakif/completionist/internal/service"
)

// CommunityHandler manages shareable checklist templates.
type CommunityHandler struct {
	community *service.CommunityService
	logger    *slog.Logger
}

// NewCommunityHandler creates a CommunityHandler.
func NewCommunityHandler(community *service.CommunityService, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{community: community, logger: logger}
}

type templateItemRequest struct {
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

type createTemplateRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Platform     string                `json:"platform"`
	Genre        string                `json:"genre"`
	RunType      string                `json:"runType"`
	Tags         string                `json:"tags"`
	ThumbnailURL string                `json:"thumbnailUrl"`
	Items        []templateItemRequest `json:"items"`
}

// HandleList returns all community templates, newest first.
//
// HTTP: GET /api/community
func (h *CommunityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.community.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// HandleGet returns one template with its items.
//
// HTTP: GET /api/community/{id}
func (h *CommunityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	templateID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	template, err := h.community.Get(r.Context(), templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// HandleGetShared resolves a share link.
//
// HTTP: GET /api/community/shared/{code}
//
// Share codes are opaque strings, so this route is addressable without
// knowing (or being able to enumerate) numeric template IDs.
func (h *CommunityHandler) HandleGetShared(w http.ResponseWriter, r *http.Request) {
	template, err := h.community.GetByShareCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// HandleCreate publishes a new template authored by the current user.
//
// HTTP: POST /api/community
func (h *CommunityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	items := make([]service.TemplateItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.TemplateItemInput{
			Description: it.Description,
			Order:       it.Order,
		})
	}

	template, err := h.community.Create(r.Context(), userID, service.CreateTemplateInput{
		Title:        req.Title,
		Description:  req.Description,
		Platform:     req.Platform,
		Genre:        req.Genre,
		RunType:      req.RunType,
		Tags:         req.Tags,
		ThumbnailURL: req.ThumbnailURL,
		Items:        items,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

// HandleDelete removes a template. Author-only; the service enforces it.
//
// HTTP: DELETE /api/community/{id}
func (h *CommunityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	templateID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.community.Delete(r.Context(), userID, templateID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImport copies a template into the user's game list.
//
// HTTP: POST /api/community/{id}/import
// RESPONSE: 201 with the newly created game.
func (h *CommunityHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	templateID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	game, err := h.community.Import(r.Context(), userID, templateID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("template imported via API",
		slog.Int64("templateID", templateID),
		slog.Int64("gameID", game.ID),
	)
	writeJSON(w, http.StatusCreated, game)
}
