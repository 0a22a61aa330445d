package types

import "time"

// JournalEntry is the record kept for one reconciliation run.
type JournalEntry struct {
	ID         int64     `json:"id" yaml:"id"`
	Time       time.Time `json:"time" yaml:"time"`
	Operation  string    `json:"operation" yaml:"operation"`
	Interfaces []string  `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	CheckMode  bool      `json:"check_mode" yaml:"check_mode"`
	Changed    bool      `json:"changed" yaml:"changed"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}
