package model

import "time"

// CommunityChecklist is a shareable checklist template authored by a user.
//
// Templates are browsable by everyone and importable into a personal game
// list. Importing copies the template — it never links to it — so a template
// can change or disappear without affecting games created from it.
//
// ShareCode is a short, unguessable identifier (an xid) used in share links.
// Numeric IDs are enumerable; the share code lets users pass around a link
// without exposing a guessable sequence.
type CommunityChecklist struct {
	ID           int64     `json:"id"`
	CreatedBy    int64     `json:"createdBy"`
	ShareCode    string    `json:"shareCode"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Platform     string    `json:"platform"`
	Genre        string    `json:"genre"`
	RunType      string    `json:"runType"`
	Tags         string    `json:"tags"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`

	// ItemCount is populated on list queries only (0 elsewhere).
	ItemCount int `json:"itemCount,omitempty"`
}

// CommunityChecklistItem is one task within a template. Same ordering rules
// as ChecklistItem: nil Order is legal, non-nil Order is unique per template.
type CommunityChecklistItem struct {
	ID                   int64  `json:"id"`
	CommunityChecklistID int64  `json:"communityChecklistId"`
	Description          string `json:"description"`
	Order                *int   `json:"order"`
}
