// Package memory holds the per-room assistant memory row.
package memory

import "time"

// Record is the single memory row kept for a room. It is overwritten on every
// assistant turn, never merged.
type Record struct {
	RoomID    string    `json:"chat_id"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}
