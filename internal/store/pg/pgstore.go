// Package pg persists webhook notifications in Postgres. Persistence is
// optional: the listener works without a store, it just loses history.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ecar.org/esign/internal/ids"
	"ecar.org/esign/internal/webhook"
)

// ErrNotFound is returned when no rows match a lookup.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// OpenDB wraps an existing connection, used by tests.
func OpenDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Event is one stored webhook notification.
type Event struct {
	ID         string
	EnvelopeID string
	Event      string
	Status     string
	TrackingID string
	ReceivedAt time.Time
	Payload    []byte
}

// SaveEvent records a parsed notification together with its raw payload and
// returns the storage key. The tracking identifier, when the notice carries
// one in its custom fields, is indexed for per-signer queries.
func (s *Store) SaveEvent(ctx context.Context, n *webhook.Notice, raw []byte) (string, error) {
	id := ids.New()
	_, err := s.db.ExecContext(ctx, `
		insert into webhook_events(id, envelope_id, event, status, tracking_id, received_at, payload)
		values ($1,$2,$3,$4,$5,now(),$6)
	`, id, n.EnvelopeID, n.Event, n.Status, n.Fields["recipientTrackingId"], raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

// EventsForEnvelope returns an envelope's notifications, oldest first. The
// ULID key sorts chronologically, so ordering by it doubles as ordering by
// arrival.
func (s *Store) EventsForEnvelope(ctx context.Context, envelopeID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, envelope_id, event, status, tracking_id, received_at, payload
		from webhook_events
		where envelope_id = $1
		order by id
	`, envelopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EnvelopeID, &e.Event, &e.Status, &e.TrackingID, &e.ReceivedAt, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestStatus returns the most recently received status for an envelope.
func (s *Store) LatestStatus(ctx context.Context, envelopeID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `
		select status from webhook_events
		where envelope_id = $1
		order by id desc
		limit 1
	`, envelopeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
