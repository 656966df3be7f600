package store

import (
	"context"
	"fmt"
	"time"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/segmentio/ksuid"
)

const DefaultHistoryLimit = 20

// RecordTransfer saves one handled URL. ID and CreatedAt are filled in when empty.
func (s *PersistentStore) RecordTransfer(ctx context.Context, rec *domain.TransferRecord) error {
	if rec.ID == "" {
		rec.ID = ksuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.nextTimestamp()
	}

	var dbo transferDBO
	dbo.FromDomain(rec)

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO transfers (id, filename, dest_path, host, mode, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		dbo.ID, dbo.Filename, dbo.DestPath, dbo.Host, dbo.Mode, dbo.Outcome, dbo.Error, dbo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer %s: %w", rec.Filename, err)
	}
	return nil
}

// RecentTransfers returns up to limit records, newest first.
func (s *PersistentStore) RecentTransfers(ctx context.Context, limit int) ([]*domain.TransferRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, filename, dest_path, host, mode, outcome, error, created_at
		FROM transfers
		ORDER BY created_at DESC, id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.TransferRecord, 0)
	for rows.Next() {
		var dbo transferDBO
		err := rows.Scan(&dbo.ID, &dbo.Filename, &dbo.DestPath, &dbo.Host, &dbo.Mode, &dbo.Outcome, &dbo.Error, &dbo.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		records = append(records, dbo.ToDomain())
	}

	return records, rows.Err()
}

// CountByOutcome returns how many records exist for each outcome.
func (s *PersistentStore) CountByOutcome(ctx context.Context) (map[domain.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM transfers GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Outcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[domain.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}

// nextTimestamp returns the current time, nudged forward so records written
// back to back by this store never share a created_at.
func (s *PersistentStore) nextTimestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	if now <= s.lastCreated {
		now = s.lastCreated + 1
	}
	s.lastCreated = now
	return time.Unix(0, now)
}
