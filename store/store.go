// Package store persists users, matrimony profiles and dismissals in
// PostgreSQL. It satisfies discovery.Store.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is discovery.ErrNotFound so the ranker can tell a missing
	// profile from a failing database.
	ErrNotFound = discovery.ErrNotFound
	// ErrInvalidApproval is returned by SetApproval for an unknown status.
	ErrInvalidApproval = errors.New("store: invalid approval status")
)

// Postgres error codes.
const foreignKeyViolation = "23503"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a PostgreSQL-backed profile store. A Store handed out by WithTx
// runs every method inside that transaction.
type Store struct {
	db   *sql.DB
	q    querier
	inTx bool
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	logging.Info().Msg("database connection established")
	return New(db), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn with a Store bound to one read-committed transaction,
// committed when fn returns nil. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, q: tx, inTx: true})
	})
}

// EnsureSchema creates any missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

// PutUser inserts a user, or resets the password of the user already
// registered under email, and returns the user's ID.
func (s *Store) PutUser(ctx context.Context, email, passwordHash string) (string, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, last_online) VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id`,
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("store: put user: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// Truncate removes every user, profile and dismissal.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx,
		`TRUNCATE TABLE dismissed_recommendations, profiles, users RESTART IDENTITY CASCADE`,
	); err != nil {
		return fmt.Errorf("store: truncate: %w", err)
	}
	return nil
}

// Credentials returns the ID and password hash registered for email.
func (s *Store) Credentials(ctx context.Context, email string) (id, passwordHash string, err error) {
	var n int64
	err = s.q.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&n, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("store: credentials: %w", err)
	}
	return strconv.FormatInt(n, 10), passwordHash, nil
}

// TouchOnline records that the user was just active.
func (s *Store) TouchOnline(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}
	if _, err := s.q.ExecContext(ctx, `UPDATE users SET last_online = NOW() WHERE id = $1`, n); err != nil {
		return fmt.Errorf("store: touch online: %w", err)
	}
	return nil
}

const profileColumns = `
	user_id, display_name, gender, age, city, state, country, degree, field,
	job_title, income_range, diet, smoking, drinking, family_type,
	family_values, preferences`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*compat.Profile, error) {
	var (
		p     compat.Profile
		id    int64
		prefs []byte
	)
	err := row.Scan(
		&id, &p.Name, &p.Gender, &p.Age,
		&p.Location.City, &p.Location.State, &p.Location.Country,
		&p.Education.Degree, &p.Education.Field,
		&p.Career.JobTitle, &p.Career.IncomeRange,
		&p.Lifestyle.Diet, &p.Lifestyle.Smoking, &p.Lifestyle.Drinking,
		&p.Family.Type, &p.Family.Values,
		&prefs,
	)
	if err != nil {
		return nil, err
	}
	p.ID = strconv.FormatInt(id, 10)
	if len(prefs) > 0 {
		p.Preferences = &compat.Preferences{}
		if err := json.Unmarshal(prefs, p.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences of %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

// Profile loads one profile.
func (s *Store) Profile(ctx context.Context, id string) (*compat.Profile, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}
	row := s.q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, n)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: profile %s: %w", id, err)
	}
	return p, nil
}

// Profiles loads every existing profile among ids in one query, keyed by ID.
func (s *Store) Profiles(ctx context.Context, ids []string) (map[string]*compat.Profile, error) {
	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		if n, ok := parseID(id); ok {
			keys = append(keys, n)
		}
	}
	out := make(map[string]*compat.Profile, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`,
		pq.Array(keys),
	)
	if err != nil {
		return nil, fmt.Errorf("store: profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("store: profiles: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: profiles: %w", err)
	}
	return out, nil
}

// IsComplete reports whether the user has a complete profile.
func (s *Store) IsComplete(ctx context.Context, id string) (bool, error) {
	n, ok := parseID(id)
	if !ok {
		return false, nil
	}
	var complete bool
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(is_complete, FALSE) FROM profiles WHERE user_id = $1`, n,
	).Scan(&complete)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: is complete: %w", err)
	}
	return complete, nil
}

// recommendableFilter selects profiles p that subject $1 may be shown.
// $2 is the approved status.
const recommendableFilter = `p.user_id <> $1
	AND p.is_complete
	AND p.approval_status = $2
	AND NOT EXISTS (
		SELECT 1 FROM dismissed_recommendations d
		WHERE d.user_id = $1 AND d.dismissed_user_id = p.user_id
	)`

// Recommendable reports whether candidateID would appear in subjectID's
// CandidateIDs.
func (s *Store) Recommendable(ctx context.Context, subjectID, candidateID string) (bool, error) {
	subject, ok1 := parseID(subjectID)
	candidate, ok2 := parseID(candidateID)
	if !ok1 || !ok2 {
		return false, nil
	}
	var ok bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM profiles p
			WHERE p.user_id = $3 AND `+recommendableFilter+`
		)`, subject, discovery.ApprovalApproved, candidate,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("store: recommendable: %w", err)
	}
	return ok, nil
}

// CandidateIDs lists complete, approved profiles other than the subject's
// that the subject has not dismissed. Eligibility is left to the engine.
func (s *Store) CandidateIDs(ctx context.Context, subjectID string) ([]string, error) {
	n, ok := parseID(subjectID)
	if !ok {
		return nil, ErrNotFound
	}
	var exists bool
	if err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`, n,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("store: candidates: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT p.user_id
		FROM profiles p
		WHERE `+recommendableFilter+`
		ORDER BY p.user_id
	`, n, discovery.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("store: candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: candidates: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, rows.Err()
}

// UpsertProfile saves a validated profile, marks it complete and records
// the owner as online. New profiles start pending approval.
func (s *Store) UpsertProfile(ctx context.Context, p *compat.Profile) error {
	n, ok := parseID(p.ID)
	if !ok {
		return ErrNotFound
	}
	var prefs []byte
	if p.Preferences != nil {
		var err error
		if prefs, err = json.Marshal(p.Preferences); err != nil {
			return fmt.Errorf("store: encode preferences: %w", err)
		}
	}

	return s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO profiles (`+profileColumns+`, is_complete)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, TRUE)
			ON CONFLICT (user_id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				gender = EXCLUDED.gender,
				age = EXCLUDED.age,
				city = EXCLUDED.city,
				state = EXCLUDED.state,
				country = EXCLUDED.country,
				degree = EXCLUDED.degree,
				field = EXCLUDED.field,
				job_title = EXCLUDED.job_title,
				income_range = EXCLUDED.income_range,
				diet = EXCLUDED.diet,
				smoking = EXCLUDED.smoking,
				drinking = EXCLUDED.drinking,
				family_type = EXCLUDED.family_type,
				family_values = EXCLUDED.family_values,
				preferences = EXCLUDED.preferences,
				is_complete = TRUE,
				updated_at = NOW()
		`,
			n, p.Name, p.Gender, p.Age,
			p.Location.City, p.Location.State, p.Location.Country,
			p.Education.Degree, p.Education.Field,
			p.Career.JobTitle, p.Career.IncomeRange,
			p.Lifestyle.Diet, p.Lifestyle.Smoking, p.Lifestyle.Drinking,
			p.Family.Type, p.Family.Values,
			nullJSON(prefs),
		)
		if isCode(err, foreignKeyViolation) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("store: upsert profile %s: %w", p.ID, err)
		}
		if _, err := tx.q.ExecContext(ctx, `UPDATE users SET last_online = NOW() WHERE id = $1`, n); err != nil {
			return fmt.Errorf("store: touch online: %w", err)
		}
		return nil
	})
}

// SetApproval records a moderation decision.
func (s *Store) SetApproval(ctx context.Context, id, status string) error {
	switch status {
	case discovery.ApprovalPending, discovery.ApprovalApproved, discovery.ApprovalRejected:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidApproval, status)
	}
	n, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE profiles SET approval_status = $2, updated_at = NOW() WHERE user_id = $1`, n, status)
	if err != nil {
		return fmt.Errorf("store: set approval: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Dismiss hides candidateID from subjectID's recommendations. Dismissing
// twice is not an error.
func (s *Store) Dismiss(ctx context.Context, subjectID, candidateID string) error {
	subject, ok1 := parseID(subjectID)
	candidate, ok2 := parseID(candidateID)
	if !ok1 || !ok2 || subject == candidate {
		return ErrNotFound
	}
	var exists bool
	if err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1 AND is_complete)`, candidate,
	).Scan(&exists); err != nil {
		return fmt.Errorf("store: dismiss: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO dismissed_recommendations (user_id, dismissed_user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		subject, candidate)
	if isCode(err, foreignKeyViolation) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: dismiss: %w", err)
	}
	return nil
}

// parseID accepts the positive range of the INTEGER id columns.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 32)
	return n, err == nil && n > 0
}

func nullJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func isCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

var _ discovery.Store = (*Store)(nil)
