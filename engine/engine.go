/*
engine.go - The engine owning the aggregate

PURPOSE:
  Engine is the single logical writer over AppState. Every action clones the
  current snapshot, applies a pure transition to the clone, persists the
  result, and only then swaps it in. A failure at any step — validation or
  persistence — leaves the previous snapshot untouched and observable.

CONCURRENCY:
  The system is designed for one user session driving one UI, so there is
  no conflict-resolution protocol. The mutex merely keeps concurrent reads
  (pages) safe against the snapshot swap. Readers always receive copies and
  must never be handed internal state.

SEE ALSO:
  - identity.go, policy.go, wallet.go, deposit.go, entitlement.go,
    catalog.go: the transitions this type applies
  - store.go: the persistence contract
*/
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Engine owns the aggregate and exposes the action surface consumed by the
// presentation layer.
type Engine struct {
	mu    sync.RWMutex
	state AppState
	store StateStore

	primaryOwner string
	now          func() time.Time
	seq          uint64
}

// Options configures engine construction.
type Options struct {
	// Owner seeds the primary owner account when no snapshot exists and
	// names the reserved username the policy protects.
	Owner OwnerSeed

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// New restores the snapshot from the store, seeding the default state when
// none exists, and returns a ready engine.
func New(ctx context.Context, store StateStore, opts Options) (*Engine, error) {
	if opts.Owner.Username == "" {
		opts.Owner = DefaultOwner()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		store:        store,
		primaryOwner: opts.Owner.Username,
		now:          opts.Now,
		seq:          uint64(opts.Now().UnixNano()),
	}

	state, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		state = DefaultState(opts.Owner)
		if err := store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("seed snapshot: %w", err)
		}
	}
	e.state = state
	return e, nil
}

// PrimaryOwner returns the reserved owner username.
func (e *Engine) PrimaryOwner() string { return e.primaryOwner }

// IsPrimaryOwner reports whether the user holds the reserved owner account.
func (e *Engine) IsPrimaryOwner(u User) bool { return u.Username == e.primaryOwner }

// mutate runs a transition against a clone of the current snapshot and swaps
// it in only after the store accepted it.
func (e *Engine) mutate(ctx context.Context, fn func(s *AppState) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := e.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	e.state = next
	return nil
}

// newID generates a process-unique id with the given prefix. Called with the
// engine lock held.
func (e *Engine) newID(prefix string) string {
	e.seq++
	return fmt.Sprintf("%s-%d", prefix, e.seq)
}

// =============================================================================
// SESSION & IDENTITY ACTIONS
// =============================================================================

// Login resolves an email or phone identifier and opens a session for the
// matched user. Credentials are not verified here; authentication security
// is outside the engine.
func (e *Engine) Login(ctx context.Context, identifier string) (User, error) {
	var user User
	err := e.mutate(ctx, func(s *AppState) error {
		var err error
		user, err = login(s, identifier)
		return err
	})
	return user, err
}

// Register creates a STUDENT with zero balance and opens a session for it.
func (e *Engine) Register(ctx context.Context, cand Candidate) (User, error) {
	var user User
	err := e.mutate(ctx, func(s *AppState) error {
		var err error
		user, err = register(s, cand, UserID(e.newID("u")))
		return err
	})
	return user, err
}

// Logout closes the current session.
func (e *Engine) Logout(ctx context.Context) error {
	return e.mutate(ctx, func(s *AppState) error {
		logout(s)
		return nil
	})
}

// CurrentUser returns the session user, if any.
func (e *Engine) CurrentUser() (User, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if u := e.state.sessionUser(); u != nil {
		return u.clone(), true
	}
	return User{}, false
}

// FindByIdentifier resolves an email or phone without opening a session.
func (e *Engine) FindByIdentifier(identifier string) (User, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return findByIdentifier(&e.state, identifier)
}

// =============================================================================
// WALLET & DEPOSIT ACTIONS
// =============================================================================

// RequestDeposit files a PENDING top-up request for the session user.
// Amount positivity is the caller-facing boundary's responsibility.
func (e *Engine) RequestDeposit(ctx context.Context, amount Amount) (DepositRequest, error) {
	var req DepositRequest
	err := e.mutate(ctx, func(s *AppState) error {
		var err error
		req, err = requestDeposit(s, amount, DepositID(e.newID("dr")), e.now())
		return err
	})
	return req, err
}

// ProcessDeposit decides a PENDING request exactly once.
func (e *Engine) ProcessDeposit(ctx context.Context, id DepositID, approve bool) error {
	return e.mutate(ctx, func(s *AppState) error {
		return processDeposit(s, id, approve)
	})
}

// AdjustBalance applies a clamping manual balance change.
func (e *Engine) AdjustBalance(ctx context.Context, userID UserID, delta Amount) error {
	return e.mutate(ctx, func(s *AppState) error {
		return adjustBalance(s, userID, delta)
	})
}

// =============================================================================
// ROLE ACTIONS
// =============================================================================

// ChangeUserRole sets the target's role, subject to the access policy with
// the session user as actor.
func (e *Engine) ChangeUserRole(ctx context.Context, targetID UserID, role Role) error {
	return e.mutate(ctx, func(s *AppState) error {
		return changeRole(s, targetID, role, e.primaryOwner)
	})
}

// =============================================================================
// ENTITLEMENT ACTIONS
// =============================================================================

// PurchaseLesson buys the lesson for the session user: debit, entitlement,
// and consumption record land atomically.
func (e *Engine) PurchaseLesson(ctx context.Context, lessonID LessonID) error {
	return e.mutate(ctx, func(s *AppState) error {
		user := s.sessionUser()
		if user == nil {
			return ErrNoSession
		}
		return purchase(s, user.ID, lessonID, e.now())
	})
}

// CanConsume reports whether the user may start a playback session now.
func (e *Engine) CanConsume(userID UserID, lessonID LessonID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return canConsume(&e.state, userID, lessonID)
}

// RecordConsumption counts one playback session start for the session user.
// Callers must check CanConsume first; see entitlement.go for the ordering
// contract. Missing session or record is a silent no-op.
func (e *Engine) RecordConsumption(ctx context.Context, lessonID LessonID) error {
	return e.mutate(ctx, func(s *AppState) error {
		recordConsumption(s, lessonID)
		return nil
	})
}

// Access summarizes a user's standing on one lesson for display.
func (e *Engine) Access(userID UserID, lessonID LessonID) AccessView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	view := AccessView{}
	li := e.state.lessonIndex(lessonID)
	if li >= 0 {
		view.ViewLimit = e.state.Lessons[li].ViewLimit
	}
	if ui := e.state.userIndex(userID); ui >= 0 {
		view.Owned = e.state.Users[ui].Owns(lessonID)
	}
	if ai := e.state.activityIndex(userID, lessonID); ai >= 0 {
		view.ViewsUsed = e.state.Activity[ai].ViewsUsed
	}
	view.CanConsume = canConsume(&e.state, userID, lessonID)
	return view
}

// AccessView is the display summary for one (user, lesson) pair.
type AccessView struct {
	Owned      bool `json:"owned"`
	ViewsUsed  int  `json:"viewsUsed"`
	ViewLimit  int  `json:"viewLimit"`
	CanConsume bool `json:"canConsume"`
}

// =============================================================================
// CATALOG ACTIONS
// =============================================================================

// AddLesson appends a lesson to the catalog under a fresh id.
func (e *Engine) AddLesson(ctx context.Context, draft LessonDraft) (Lesson, error) {
	var lesson Lesson
	err := e.mutate(ctx, func(s *AppState) error {
		lesson = addLesson(s, draft, LessonID(e.newID("l")))
		return nil
	})
	return lesson, err
}

// RemoveLesson deletes a lesson, retaining orphaned entitlement records.
func (e *Engine) RemoveLesson(ctx context.Context, id LessonID) error {
	return e.mutate(ctx, func(s *AppState) error {
		return removeLesson(s, id)
	})
}

// Lesson returns one catalog entry.
func (e *Engine) Lesson(id LessonID) (Lesson, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := e.state.lessonIndex(id); i >= 0 {
		return e.state.Lessons[i], true
	}
	return Lesson{}, false
}

// =============================================================================
// READ VIEWS
// =============================================================================

// Snapshot returns a deep copy of the aggregate. Consumers must treat it as
// their own value; mutating it has no effect on the engine.
func (e *Engine) Snapshot() AppState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Users lists all users ranked OWNER, ADMIN, STUDENT, each rank in
// registration order.
func (e *Engine) Users() []User {
	snap := e.Snapshot()
	sort.SliceStable(snap.Users, func(i, j int) bool {
		return snap.Users[i].Role.Rank() < snap.Users[j].Role.Rank()
	})
	return snap.Users
}

// Lessons lists the catalog in insertion order.
func (e *Engine) Lessons() []Lesson {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Lesson(nil), e.state.Lessons...)
}

// Deposits lists all requests, PENDING first, then by creation time.
func (e *Engine) Deposits() []DepositRequest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := append([]DepositRequest(nil), e.state.DepositRequests...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Status == DepositPending, out[j].Status == DepositPending
		if pi != pj {
			return pi
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
