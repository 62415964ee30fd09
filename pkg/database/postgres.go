package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

const (
	tableJob        = "job"
	tableCheckpoint = "checkpoint"

	jobColumns        = `id, type, owner_id, params, state, progress, message, result, error, retry_of, created_at, updated_at, last_heartbeat_at, version, attempt`
	checkpointColumns = `job_id, step, progress, data, saved_at, ttl`
)

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}

// Postgres is a keel database implementation that uses postgres.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	cfg, err := pgxpool.ParseConfig(opts.ConnString())
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertJob inserts a single job
func (p *Postgres) InsertJob(ctx context.Context, j *structs.Job) error {
	vals, args := toJobSqlArgs(1, j) // the sql lib starts at 1
	qstr := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s;`, tableJob, jobColumns, vals)
	_, err := p.pool.Exec(ctx, qstr, args...)
	return err
}

// Job returns a single job by ID
func (p *Postgres) Job(ctx context.Context, id string) (*structs.Job, error) {
	qstr := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1;`, jobColumns, tableJob)
	j, err := scanJob(p.pool.QueryRow(ctx, qstr, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w job %s", ie.ErrNotFound, id)
	}
	return j, err
}

// Jobs returns jobs matching the given query
func (p *Postgres) Jobs(ctx context.Context, q *structs.Query) ([]*structs.Job, error) {
	where, args := toSqlQuery(map[string][]string{
		"id":       q.JobIDs,
		"owner_id": q.OwnerIDs,
		"type":     q.Types,
		"state":    statesToStrings(q.States),
	},
		q.UpdatedBefore, q.HeartbeatBefore,
	)
	args = append(args, q.Limit, q.Offset)

	qstr := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		jobColumns, tableJob, where, len(args)-1, len(args),
	)

	rows, err := p.pool.Query(ctx, qstr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*structs.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// CASUpdate updates a job iff it's in the expected state (& the patch's
// preconditions hold). Every write bumps the job's version.
func (p *Postgres) CASUpdate(ctx context.Context, id string, expected structs.State, patch *structs.JobPatch) (*structs.Job, error) {
	set, args := toPatchSql(1, patch, timeNow())

	args = append(args, id, expected)
	where := fmt.Sprintf("id=$%d AND state=$%d", len(args)-1, len(args))
	if patch != nil && patch.IfHeartbeatBefore > 0 {
		args = append(args, patch.IfHeartbeatBefore)
		where = fmt.Sprintf("%s AND last_heartbeat_at < $%d", where, len(args))
	}
	if patch != nil && patch.IfAttempt > 0 {
		args = append(args, patch.IfAttempt)
		where = fmt.Sprintf("%s AND attempt=$%d", where, len(args))
	}

	qstr := fmt.Sprintf(`UPDATE %s SET %s WHERE %s RETURNING %s;`, tableJob, set, where, jobColumns)

	j, err := scanJob(p.pool.QueryRow(ctx, qstr, args...))
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// nothing was updated; work out if that's because the job is gone
	var exists int
	err = p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id=$1;`, tableJob), id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w job %s", ie.ErrNotFound, id)
	} else if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w job %s is not %s", ie.ErrConflict, id, expected)
}

// DeleteJobs deletes jobs by ID, checkpoints go with them (FK cascade)
func (p *Postgres) DeleteJobs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := toSqlIn(1, "id", ids)
	info, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s;`, tableJob, in), args...)
	if err != nil {
		return 0, err
	}
	return info.RowsAffected(), nil
}

// toSqlQuery converts query data into a SQL query string & args
func toSqlQuery(in map[string][]string, updatedBefore, heartbeatBefore int64) (string, []interface{}) {
	and := []string{}
	args := []interface{}{}
	for _, k := range sortedKeys(in) {
		v := in[k]
		if len(v) == 0 {
			continue
		}
		s, a := toSqlIn(len(args)+1, k, v)
		and = append(and, s)
		args = append(args, a...)
	}
	if updatedBefore > 0 {
		args = append(args, updatedBefore)
		and = append(and, fmt.Sprintf("updated_at < $%d", len(args)))
	}
	if heartbeatBefore > 0 {
		args = append(args, heartbeatBefore)
		and = append(and, fmt.Sprintf("last_heartbeat_at < $%d", len(args)))
	}
	if len(and) == 0 {
		return "", args
	}
	return fmt.Sprintf("WHERE %s", strings.Join(and, " AND ")), args
}

// toSqlIn converts a list of strings into a SQL IN clause
func toSqlIn(offset int, field string, args []string) (string, []interface{}) {
	if len(args) == 0 {
		return "", []interface{}{}
	}
	vals := []string{}
	ifargs := []interface{}{}
	for i, a := range args {
		vals = append(vals, fmt.Sprintf("$%d", i+offset))
		ifargs = append(ifargs, a)
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(vals, ", ")), ifargs
}

// toPatchSql converts a patch into the SET part of an UPDATE & it's args.
// version & updated_at are always set.
func toPatchSql(offset int, p *structs.JobPatch, now int64) (string, []interface{}) {
	sets := []string{}
	args := []interface{}{}
	add := func(format string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(format, offset+len(args)-1))
	}

	if p != nil {
		if p.State != "" {
			add("state=$%d", p.State)
		}
		if p.NextAttempt {
			sets = append(sets, "attempt=attempt+1")
		}
		if p.Progress != nil {
			if p.ResetProgress {
				add("progress=$%d", *p.Progress)
			} else {
				add("progress=GREATEST(progress, $%d)", *p.Progress)
			}
		}
		if p.Message != nil {
			add("message=$%d", *p.Message)
		}
		if p.HeartbeatAt > 0 {
			add("last_heartbeat_at=$%d", p.HeartbeatAt)
		}
		if p.Result != nil {
			add("result=$%d", []byte(p.Result))
		}
		if p.Error != "" {
			add("error=$%d", p.Error)
		}
	}
	sets = append(sets, "version=version+1")
	add("updated_at=$%d", now)

	return strings.Join(sets, ", "), args
}

// toJobSqlArgs converts a job into a SQL query string & args (for an insert)
func toJobSqlArgs(offset int, j *structs.Job) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 15+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = timeNow()
		j.UpdatedAt = j.CreatedAt
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		j.ID,
		j.Type,
		j.OwnerID,
		nilIfEmpty(j.Params),
		j.State,
		j.Progress,
		j.Message,
		nilIfEmpty(j.Result),
		j.Error,
		j.RetryOf,
		j.CreatedAt,
		j.UpdatedAt,
		j.LastHeartbeatAt,
		j.Version,
		j.Attempt,
	}
}

// scanJob reads a job from a row selected with jobColumns
func scanJob(row pgx.Row) (*structs.Job, error) {
	j := structs.Job{}
	var params, result []byte
	err := row.Scan(
		&j.ID,
		&j.Type,
		&j.OwnerID,
		&params,
		&j.State,
		&j.Progress,
		&j.Message,
		&result,
		&j.Error,
		&j.RetryOf,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.LastHeartbeatAt,
		&j.Version,
		&j.Attempt,
	)
	if err != nil {
		return nil, err
	}
	j.Params = params
	j.Result = result
	return &j, nil
}

// statesToStrings converts a list of states into a list of strings
func statesToStrings(in []structs.State) []string {
	if len(in) == 0 {
		return nil
	}
	out := []string{}
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// nilIfEmpty returns nil for empty raw json so the column is NULL
func nilIfEmpty(in []byte) []byte {
	if len(in) == 0 {
		return nil
	}
	return in
}

// sortedKeys returns map keys in a stable order so generated SQL is deterministic
func sortedKeys(in map[string][]string) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
