package domain

import "time"

// TransferRecord is a history row for one handled URL.
// It intentionally carries the host only, never the full URL.
type TransferRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	DestPath  string    `json:"dest_path"`
	Host      string    `json:"host"`
	Mode      string    `json:"mode"`
	Outcome   Outcome   `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
