package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KindError marks an event whose effect failed.
const KindError = "error"

// Event is one journal row.
type Event struct {
	ID        string    `json:"id"`
	Frame     uint64    `json:"frame"`
	Label     string    `json:"label"`
	Kind      string    `json:"kind"`
	Level     float64   `json:"level,omitempty"`
	Ticks     int       `json:"ticks,omitempty"`
	Target    string    `json:"target,omitempty"`
	Error     string    `json:"error,omitempty"`
	VolumeBar float64   `json:"volume_bar"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository provides access to the events journal.
type EventRepository struct {
	db       *sql.DB
	capacity int
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db, capacity: s.capacity}
}

// Create inserts e, assigning an ID and timestamp when unset, then drops
// the oldest rows beyond the store capacity.
func (r *EventRepository) Create(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, frame, label, kind, level, ticks, target, error, volume_bar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, int64(e.Frame), e.Label, e.Kind, e.Level, e.Ticks, e.Target, e.Error, e.VolumeBar, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if seq > int64(r.capacity) {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE seq <= ?`, seq-int64(r.capacity)); err != nil {
			return fmt.Errorf("prune events: %w", err)
		}
	}
	return nil
}

const eventColumns = `id, frame, label, kind, level, ticks, target, error, volume_bar, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	e := &Event{}
	var frame, created int64
	if err := row.Scan(&e.ID, &frame, &e.Label, &e.Kind, &e.Level, &e.Ticks, &e.Target, &e.Error, &e.VolumeBar, &created); err != nil {
		return nil, err
	}
	e.Frame = uint64(frame)
	e.CreatedAt = time.Unix(0, created)
	return e, nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Recent returns up to limit events, newest first. A limit of zero or less
// returns everything kept.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = r.capacity
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByLabel returns how many kept events each label produced.
func (r *EventRepository) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM events GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// Count returns the number of kept events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
