package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/completionist/internal/auth"
	"github.com/sakif/completionist/internal/service"
)

// GameHandler manages CRUD operations for tracked games.
//
// Every route here runs behind RequireAuth, so the user ID is always in the
// request context; the handler's only jobs are decoding JSON, extracting URL
// parameters, and translating service results to HTTP.
type GameHandler struct {
	games  *service.GameService
	logger *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(games *service.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

type createGameRequest struct {
	Title        string `json:"title"`
	Platform     string `json:"platform"`
	Genre        string `json:"genre"`
	RunType      string `json:"runType"`
	Tags         string `json:"tags"`
	CoverURL     string `json:"coverUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// updateGameRequest uses pointer fields so an absent key is distinguishable
// from an explicit empty string: nil means "leave unchanged", "" clears.
type updateGameRequest struct {
	Title        *string `json:"title"`
	Platform     *string `json:"platform"`
	Genre        *string `json:"genre"`
	RunType      *string `json:"runType"`
	Tags         *string `json:"tags"`
	CoverURL     *string `json:"coverUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// HandleList returns the user's games, each with its computed progress.
//
// HTTP: GET /api/games
func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	games, err := h.games.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleCreate adds a game to the user's list.
//
// HTTP: POST /api/games
// REQUEST BODY: {"title": "Hollow Knight", "platform": "Switch", ...}
func (h *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	game, err := h.games.Create(r.Context(), userID, service.CreateGameInput{
		Title:        req.Title,
		Platform:     req.Platform,
		Genre:        req.Genre,
		RunType:      req.RunType,
		Tags:         req.Tags,
		CoverURL:     req.CoverURL,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// HandleGet returns a single game.
//
// HTTP: GET /api/games/{id}
func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	game, err := h.games.Get(r.Context(), userID, gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleUpdate applies a partial update to a game.
//
// HTTP: PATCH /api/games/{id}
func (h *GameHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	game, err := h.games.Update(r.Context(), userID, gameID, service.UpdateGameInput{
		Title:        req.Title,
		Platform:     req.Platform,
		Genre:        req.Genre,
		RunType:      req.RunType,
		Tags:         req.Tags,
		CoverURL:     req.CoverURL,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// HandleDelete removes a game and, via cascade, its checklist.
//
// HTTP: DELETE /api/games/{id}
func (h *GameHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.games.Delete(r.Context(), userID, gameID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProgress returns completion statistics for a game's checklist.
//
// HTTP: GET /api/games/{id}/progress
// RESPONSE: {"gameId": 1, "total": 8, "completed": 3, "percent": 38}
func (h *GameHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	gameID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	progress, err := h.games.Progress(r.Context(), userID, gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
