package store

import (
	"database/sql"
	"time"

	"github.com/datallboy/gofetch/internal/domain"
)

// transferDBO maps to the transfers table
type transferDBO struct {
	ID        string         `db:"id"`
	Filename  string         `db:"filename"`
	DestPath  string         `db:"dest_path"`
	Host      sql.NullString `db:"host"`
	Mode      string         `db:"mode"`
	Outcome   string         `db:"outcome"`
	Error     sql.NullString `db:"error"`
	CreatedAt int64          `db:"created_at"` // unix nanoseconds
}

// Mapper: DBO to Domain TransferRecord
func (t *transferDBO) ToDomain() *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:        t.ID,
		Filename:  t.Filename,
		DestPath:  t.DestPath,
		Host:      t.Host.String,
		Mode:      t.Mode,
		Outcome:   domain.Outcome(t.Outcome),
		Error:     t.Error.String,
		CreatedAt: time.Unix(0, t.CreatedAt),
	}
}

// Mapper: Domain TransferRecord to DBO
func (t *transferDBO) FromDomain(rec *domain.TransferRecord) {
	t.ID = rec.ID
	t.Filename = rec.Filename
	t.DestPath = rec.DestPath
	t.Host = sql.NullString{String: rec.Host, Valid: rec.Host != ""}
	t.Mode = rec.Mode
	t.Outcome = string(rec.Outcome)
	t.Error = sql.NullString{String: rec.Error, Valid: rec.Error != ""}
	t.CreatedAt = rec.CreatedAt.UnixNano()
}
