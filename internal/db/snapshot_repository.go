package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SnapshotRecord is one player's latest processed snapshot.
type SnapshotRecord struct {
	Region       string
	UserID       int64
	CapturedAt   time.Time
	RawPath      string
	ParsedPath   string
	MapPath      string
	OverviewPath string
}

// RecordSnapshot upserts the latest snapshot record for a player. Each
// (region, user) pair keeps exactly one row.
func (d *DB) RecordSnapshot(ctx context.Context, rec SnapshotRecord) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO mysekai_snapshots (region, user_id, captured_at, raw_path, parsed_path, map_path, overview_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (region, user_id) DO UPDATE
		 SET captured_at = EXCLUDED.captured_at,
		     raw_path = EXCLUDED.raw_path,
		     parsed_path = EXCLUDED.parsed_path,
		     map_path = EXCLUDED.map_path,
		     overview_path = EXCLUDED.overview_path`,
		rec.Region, rec.UserID, rec.CapturedAt, rec.RawPath, rec.ParsedPath, rec.MapPath, rec.OverviewPath,
	)
	if err != nil {
		return fmt.Errorf("recording snapshot for %s/%d: %w", rec.Region, rec.UserID, err)
	}
	return nil
}

// LatestSnapshot retrieves a player's snapshot record.
// Returns nil, nil if the player has no processed snapshot yet.
func (d *DB) LatestSnapshot(ctx context.Context, region string, userID int64) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	err := d.pool.QueryRow(ctx,
		`SELECT region, user_id, captured_at, raw_path, parsed_path, map_path, overview_path
		 FROM mysekai_snapshots WHERE region = $1 AND user_id = $2`,
		region, userID,
	).Scan(&rec.Region, &rec.UserID, &rec.CapturedAt, &rec.RawPath, &rec.ParsedPath, &rec.MapPath, &rec.OverviewPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying snapshot for %s/%d: %w", region, userID, err)
	}
	return &rec, nil
}
