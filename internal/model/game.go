package model

import "time"

// Game is one tracked play-through. A user can track the same title several
// times (e.g. a casual run and a 100% run), so nothing about a Game is unique
// except its ID.
//
// Descriptive fields other than Title are optional free text — the frontend
// treats empty strings as "not set".
type Game struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Title        string    `json:"title"`
	Platform     string    `json:"platform"`
	Genre        string    `json:"genre"`
	RunType      string    `json:"runType"` // e.g. "casual", "100%", "speedrun"
	Tags         string    `json:"tags"`    // free-text, comma separated by convention
	CoverURL     string    `json:"coverUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Progress is the computed completion state of a game's checklist.
//
// It is always derived from the live checklist rows, never stored — storing it
// would just create a second copy that can drift out of sync.
type Progress struct {
	GameID    int64 `json:"gameId"`
	Total     int   `json:"total"`
	Completed int   `json:"completed"`
	Percent   int   `json:"percent"` // 0–100, 0 when the checklist is empty
}

// GameWithProgress bundles a game with its computed progress for list views,
// so the frontend doesn't need one extra request per game.
type GameWithProgress struct {
	Game
	Progress Progress `json:"progress"`
}
