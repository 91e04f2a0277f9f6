package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/habitflow/habitflow/internal/domain"
)

// State keys.
const (
	keyVersion     = "version"
	keyTotalPoints = "total_points"
	keyQuote       = "quote"
)

// Load reads the stored snapshot. It returns nil when nothing has been saved.
func (d *DB) Load(ctx context.Context) (*domain.Snapshot, error) {
	raw, ok, err := getState(ctx, d.db, keyVersion)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if !ok {
		return nil, nil
	}

	snap := domain.Snapshot{}
	if snap.Version, err = strconv.ParseInt(raw, 10, 64); err != nil {
		return nil, fmt.Errorf("parse version %q: %w", raw, err)
	}
	if raw, _, err = getState(ctx, d.db, keyTotalPoints); err != nil {
		return nil, fmt.Errorf("read total points: %w", err)
	}
	if raw != "" {
		if snap.TotalPoints, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("parse total points %q: %w", raw, err)
		}
	}
	if snap.Quote, _, err = getState(ctx, d.db, keyQuote); err != nil {
		return nil, fmt.Errorf("read quote: %w", err)
	}

	if snap.Tasks, err = d.loadTasks(ctx); err != nil {
		return nil, err
	}
	if snap.Rewards, err = d.loadRewards(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save replaces the stored state with snap in one transaction. A snapshot
// older than the stored one is ignored so a late save never overwrites a
// newer state.
func (d *DB) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	raw, ok, err := getState(ctx, tx, keyVersion)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if ok {
		stored, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && stored > snap.Version {
			return nil
		}
	}

	for _, q := range []string{`DELETE FROM completions`, `DELETE FROM tasks`, `DELETE FROM rewards`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	for i, t := range snap.Tasks {
		if err := insertTask(ctx, tx, i, t); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	for i, r := range snap.Rewards {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rewards (id, position, title, description, icon, point_requirement, unlocked, unlocked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.Title, r.Description, r.Icon, r.PointRequirement, r.Unlocked, string(r.UnlockedAt),
		)
		if err != nil {
			return fmt.Errorf("insert reward %s: %w", r.ID, err)
		}
	}

	state := map[string]string{
		keyVersion:     strconv.FormatInt(snap.Version, 10),
		keyTotalPoints: strconv.Itoa(snap.TotalPoints),
		keyQuote:       snap.Quote,
	}
	for k, v := range state {
		if err := setState(ctx, tx, k, v); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Version returns the stored snapshot version, 0 if none.
func (d *DB) Version(ctx context.Context) (int64, error) {
	raw, ok, err := getState(ctx, d.db, keyVersion)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func insertTask(ctx context.Context, tx *sql.Tx, pos int, t domain.Task) error {
	reminders := t.Reminders
	if reminders == nil {
		reminders = []domain.Reminder{}
	}
	remJSON, err := json.Marshal(reminders)
	if err != nil {
		return err
	}

	var (
		target    sql.NullInt64
		freqUnit  sql.NullString
		freqValue sql.NullInt64
	)
	if t.WeeklyTarget != nil {
		target = sql.NullInt64{Int64: int64(*t.WeeklyTarget), Valid: true}
	}
	if t.Frequency != nil {
		freqUnit = sql.NullString{String: string(t.Frequency.Unit), Valid: true}
		freqValue = sql.NullInt64{Int64: int64(t.Frequency.Value), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, position, title, description, kind, color, created_at,
			weekly_target, freq_unit, freq_value, reminders, streak, points)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, pos, t.Title, t.Description, string(t.Kind), t.Color,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		target, freqUnit, freqValue, string(remJSON), t.Streak, t.Points,
	)
	if err != nil {
		return err
	}

	for _, date := range t.CompletionDates {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO completions (task_id, date) VALUES (?, ?)`,
			t.ID, string(date),
		); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) loadTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, description, kind, color, created_at,
			weekly_target, freq_unit, freq_value, reminders, streak, points
		 FROM tasks ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			t         domain.Task
			kind      string
			created   string
			target    sql.NullInt64
			freqUnit  sql.NullString
			freqValue sql.NullInt64
			remJSON   string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &kind, &t.Color, &created,
			&target, &freqUnit, &freqValue, &remJSON, &t.Streak, &t.Points); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Kind = domain.TaskKind(kind)
		if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", t.ID, err)
		}
		if target.Valid {
			v := int(target.Int64)
			t.WeeklyTarget = &v
		}
		if freqUnit.Valid {
			t.Frequency = &domain.Frequency{Unit: domain.FrequencyUnit(freqUnit.String), Value: int(freqValue.Int64)}
		}
		if err := json.Unmarshal([]byte(remJSON), &t.Reminders); err != nil {
			return nil, fmt.Errorf("decode reminders of %s: %w", t.ID, err)
		}
		if t.Reminders == nil {
			t.Reminders = []domain.Reminder{}
		}
		t.CompletionDates = []domain.DateKey{}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close() // single connection: release it before the next query

	crows, err := d.db.QueryContext(ctx, `SELECT task_id, date FROM completions ORDER BY task_id, date`)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var id, date string
		if err := crows.Scan(&id, &date); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if i, ok := index[id]; ok {
			tasks[i].CompletionDates = append(tasks[i].CompletionDates, domain.DateKey(date))
		}
	}
	return tasks, crows.Err()
}

// ─── Rewards ────────────────────────────────────────────────────────────────

func (d *DB) loadRewards(ctx context.Context) ([]domain.Reward, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, description, icon, point_requirement, unlocked, unlocked_at
		 FROM rewards ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	rewards := []domain.Reward{}
	for rows.Next() {
		var (
			r  domain.Reward
			at string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Icon, &r.PointRequirement, &r.Unlocked, &at); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		r.UnlockedAt = domain.DateKey(at)
		rewards = append(rewards, r)
	}
	return rewards, rows.Err()
}
