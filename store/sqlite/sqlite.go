/*
Package sqlite persists the aggregate snapshot in a SQLite database.

PURPOSE:
  An alternative to the flat JSON file for deployments that want a real
  database file (inspection with sqlite3, backups, WAL). The persistence
  contract is identical: Save replaces the whole snapshot, inside one
  transaction, so the stored state always matches exactly one engine
  snapshot.

SCHEMA:
  users, lessons, activity, deposit_requests mirror the aggregate's
  collections; the single-row session table holds the current user.
  Money columns are decimal strings, never floats.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/NOUR0003/star-academy/engine"
)

// Store implements engine.StateStore over SQLite.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, creating the schema when absent. Use
// ":memory:" for a throwaway database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		full_name TEXT,
		phone TEXT NOT NULL,
		father_phone TEXT,
		mother_phone TEXT,
		role TEXT NOT NULL,
		balance TEXT NOT NULL,
		purchased_lessons TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lessons (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL,
		view_limit INTEGER NOT NULL,
		video_ref TEXT,
		thumbnail_ref TEXT,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activity (
		user_id TEXT NOT NULL,
		lesson_id TEXT NOT NULL,
		views_used INTEGER NOT NULL,
		purchase_date TEXT NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (user_id, lesson_id)
	);

	CREATE TABLE IF NOT EXISTS deposit_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	-- single-row session holder; id is always 1
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current_user TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reconstructs the aggregate from the tables. An empty users table
// means no snapshot was ever saved.
func (s *Store) Load(ctx context.Context) (engine.AppState, bool, error) {
	state := engine.AppState{
		Users:           []engine.User{},
		Lessons:         []engine.Lesson{},
		Activity:        []engine.EntitlementRecord{},
		DepositRequests: []engine.DepositRequest{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, full_name, phone, father_phone, mother_phone,
		       role, balance, purchased_lessons
		FROM users ORDER BY seq`)
	if err != nil {
		return state, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var u engine.User
		var balance, purchased string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone,
			&u.FatherPhone, &u.MotherPhone, &u.Role, &balance, &purchased); err != nil {
			return state, false, err
		}
		u.Balance = engine.ParseAmount(balance)
		u.PurchasedLessons = splitLessonIDs(purchased)
		state.Users = append(state.Users, u)
	}
	if err := rows.Err(); err != nil {
		return state, false, err
	}
	if len(state.Users) == 0 {
		return engine.AppState{}, false, nil
	}

	lrows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, price, view_limit, video_ref, thumbnail_ref
		FROM lessons ORDER BY seq`)
	if err != nil {
		return state, false, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var l engine.Lesson
		var price string
		if err := lrows.Scan(&l.ID, &l.Title, &l.Description, &price, &l.ViewLimit,
			&l.VideoRef, &l.ThumbnailRef); err != nil {
			return state, false, err
		}
		l.Price = engine.ParseAmount(price)
		state.Lessons = append(state.Lessons, l)
	}
	if err := lrows.Err(); err != nil {
		return state, false, err
	}

	arows, err := s.db.QueryContext(ctx, `
		SELECT user_id, lesson_id, views_used, purchase_date
		FROM activity ORDER BY seq`)
	if err != nil {
		return state, false, err
	}
	defer arows.Close()
	for arows.Next() {
		var rec engine.EntitlementRecord
		var purchased string
		if err := arows.Scan(&rec.UserID, &rec.LessonID, &rec.ViewsUsed, &purchased); err != nil {
			return state, false, err
		}
		rec.PurchaseDate = parseTime(purchased)
		state.Activity = append(state.Activity, rec)
	}
	if err := arows.Err(); err != nil {
		return state, false, err
	}

	drows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, amount, status, created_at
		FROM deposit_requests ORDER BY seq`)
	if err != nil {
		return state, false, err
	}
	defer drows.Close()
	for drows.Next() {
		var req engine.DepositRequest
		var amount, created string
		if err := drows.Scan(&req.ID, &req.UserID, &req.Username, &amount, &req.Status, &created); err != nil {
			return state, false, err
		}
		req.Amount = engine.ParseAmount(amount)
		req.CreatedAt = parseTime(created)
		state.DepositRequests = append(state.DepositRequests, req)
	}
	if err := drows.Err(); err != nil {
		return state, false, err
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT current_user FROM session WHERE id = 1`).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return state, false, err
	}
	state.CurrentUser = engine.UserID(current)

	return state, true, nil
}

// Save replaces the stored snapshot inside a single transaction. Rollback on
// any failure leaves the previous snapshot intact.
func (s *Store) Save(ctx context.Context, state engine.AppState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "lessons", "activity", "deposit_requests", "session"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for i, u := range state.Users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, username, email, full_name, phone, father_phone,
				mother_phone, role, balance, purchased_lessons, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Email, u.FullName, u.Phone, u.FatherPhone,
			u.MotherPhone, u.Role, u.Balance.String(), joinLessonIDs(u.PurchasedLessons), i)
		if err != nil {
			return err
		}
	}
	for i, l := range state.Lessons {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lessons (id, title, description, price, view_limit,
				video_ref, thumbnail_ref, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Title, l.Description, l.Price.String(), l.ViewLimit,
			l.VideoRef, l.ThumbnailRef, i)
		if err != nil {
			return err
		}
	}
	for i, rec := range state.Activity {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activity (user_id, lesson_id, views_used, purchase_date, seq)
			VALUES (?, ?, ?, ?, ?)`,
			rec.UserID, rec.LessonID, rec.ViewsUsed, rec.PurchaseDate.Format(time.RFC3339Nano), i)
		if err != nil {
			return err
		}
	}
	for i, req := range state.DepositRequests {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deposit_requests (id, user_id, username, amount, status, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.UserID, req.Username, req.Amount.String(), req.Status,
			req.CreatedAt.Format(time.RFC3339Nano), i)
		if err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session (id, current_user) VALUES (1, ?)`,
		string(state.CurrentUser)); err != nil {
		return err
	}

	return tx.Commit()
}

func joinLessonIDs(ids []engine.LessonID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

func splitLessonIDs(s string) []engine.LessonID {
	if s == "" {
		return []engine.LessonID{}
	}
	parts := strings.Split(s, ",")
	out := make([]engine.LessonID, len(parts))
	for i, p := range parts {
		out[i] = engine.LessonID(p)
	}
	return out
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
