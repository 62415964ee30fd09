package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

// SaveCheckpoint upserts the job's checkpoint; there is only ever one per job.
func (p *Postgres) SaveCheckpoint(ctx context.Context, cp *structs.Checkpoint) error {
	vals, args, err := toCheckpointSqlArgs(1, cp)
	if err != nil {
		return err
	}
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s
		ON CONFLICT (job_id) DO UPDATE SET
			step=EXCLUDED.step,
			progress=EXCLUDED.progress,
			data=EXCLUDED.data,
			saved_at=EXCLUDED.saved_at,
			ttl=EXCLUDED.ttl;`,
		tableCheckpoint, checkpointColumns, vals,
	)
	_, err = p.pool.Exec(ctx, qstr, args...)
	return err
}

// Checkpoint returns the job's checkpoint, if it exists and hasn't expired.
func (p *Postgres) Checkpoint(ctx context.Context, jobID string) (*structs.Checkpoint, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s WHERE job_id=$1;`, checkpointColumns, tableCheckpoint)

	cp := &structs.Checkpoint{}
	var data []byte
	err := p.pool.QueryRow(ctx, qstr, jobID).Scan(
		&cp.JobID,
		&cp.Step,
		&cp.Progress,
		&data,
		&cp.SavedAt,
		&cp.TTL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w for job %s", ie.ErrCheckpointNotFound, jobID)
	} else if err != nil {
		return nil, err
	}

	if cp.Expired(timeNow()) {
		return nil, fmt.Errorf("%w for job %s at %d", ie.ErrCheckpointExpired, jobID, cp.ExpiresAt())
	}

	if len(data) > 0 {
		cp.Data = &structs.CheckpointData{}
		if err := json.Unmarshal(data, cp.Data); err != nil {
			return nil, fmt.Errorf("failed to decode checkpoint data for job %s: %w", jobID, err)
		}
	}

	return cp, nil
}

// DeleteExpiredCheckpoints removes checkpoints that expired at or before `now`.
func (p *Postgres) DeleteExpiredCheckpoints(ctx context.Context, now int64) (int64, error) {
	qstr := fmt.Sprintf(`DELETE FROM %s WHERE saved_at + ttl <= $1;`, tableCheckpoint)
	info, err := p.pool.Exec(ctx, qstr, now)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// toCheckpointSqlArgs converts a checkpoint into a SQL query string & args (for an insert)
func toCheckpointSqlArgs(offset int, cp *structs.Checkpoint) (string, []interface{}, error) {
	var data []byte
	if cp.Data != nil {
		raw, err := json.Marshal(cp.Data)
		if err != nil {
			return "", nil, err
		}
		data = raw
	}
	return fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", offset, offset+1, offset+2, offset+3, offset+4, offset+5),
		[]interface{}{
			cp.JobID,
			cp.Step,
			cp.Progress,
			data,
			cp.SavedAt,
			cp.TTL,
		}, nil
}
