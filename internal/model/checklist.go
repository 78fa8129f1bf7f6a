package model

// ChecklistItem is one trackable task within a game's checklist.
//
// WHY *int FOR Order?
// Order is genuinely optional: an item without an order is legal and sorts
// after all ordered items. A plain int can't distinguish "no order" from
// "order 0", so we use a pointer — nil means unset, and it marshals to JSON
// null, which is what the frontend expects.
//
// Order values are display hints, not identities: they don't have to be
// contiguous or start at any particular number. The only rule, enforced by a
// unique index in the database, is that two items under the same game cannot
// share the same non-nil order.
type ChecklistItem struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"gameId"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Order       *int   `json:"order"`
}
