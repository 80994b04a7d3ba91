package models

import "time"

// HistoryEntry is one immutable record in a dossier's transition journal.
// Entries are appended by the aggregate when a transition commits and are
// never edited or removed; slice order equals commit order.
type HistoryEntry struct {
	From   *Phase    `json:"from"`
	To     Phase     `json:"to"`
	At     time.Time `json:"at"`
	By     string    `json:"by"`
	Reason string    `json:"reason"`
}

// SystemActor marks history entries written by the system itself, such as
// the automatic move to guide_ready when a guide is uploaded.
const SystemActor = "system"
