/*
Package engine implements the ledger and entitlement engine for the academy
storefront.

PURPOSE:
  This package contains the state-machine core: user wallets, lesson
  entitlements, view metering, deposit approval, and role policy. Everything
  above it (HTTP, rendering, the AI companion) is glue.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A non-negative currency quantity backed by decimal.Decimal
  - User: Identity + wallet + set of purchased lessons
  - Lesson: Catalog entry with price and view quota
  - EntitlementRecord: Per (user, lesson) consumption counter
  - DepositRequest: PENDING -> APPROVED/REJECTED wallet top-up
  - AppState: The aggregate root every transition operates on

DESIGN PRINCIPLES:
  1. Atomicity: Transitions clone the aggregate, mutate the clone, and swap
     it in only after persistence succeeds. Partial updates are never visible.
  2. Precision: Money uses decimal.Decimal, never float64.
  3. Type Safety: Distinct ID types prevent mixing users and lessons.

SEE ALSO:
  - engine.go: The Engine that owns AppState and applies transitions
  - errors.go: Typed error kinds for every expected failure
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Currency quantity
// =============================================================================

// Amount is a currency value. The engine never stores a negative balance;
// Amount itself can be negative so deltas and debits are expressible.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value))}
}

// ParseAmount parses a decimal string, returning zero on malformed input.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: d}
}

func (a Amount) Add(b Amount) Amount      { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount              { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsNegative() bool         { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool         { return a.Value.IsPositive() }
func (a Amount) IsZero() bool             { return a.Value.IsZero() }
func (a Amount) LessThan(b Amount) bool   { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool      { return a.Value.Equal(b.Value) }
func (a Amount) String() string           { return a.Value.String() }

// MarshalJSON encodes the amount as a bare decimal string so snapshots stay
// flat and human-readable.
func (a Amount) MarshalJSON() ([]byte, error) { return a.Value.MarshalJSON() }

func (a *Amount) UnmarshalJSON(data []byte) error { return a.Value.UnmarshalJSON(data) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type LessonID string
type DepositID string

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
	RoleOwner   Role = "OWNER"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin || r == RoleOwner
}

// IsStaff reports whether the role may reach the admin surface.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Rank returns the display/sort priority: OWNER < ADMIN < STUDENT.
// This is a ranking for listings only, not a permission hierarchy.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	default:
		return 2
	}
}

// =============================================================================
// USER - Identity + wallet + entitlement set
// =============================================================================

type User struct {
	ID               UserID     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	Phone            string     `json:"phone"`
	FatherPhone      string     `json:"fatherPhone"`
	MotherPhone      string     `json:"motherPhone"`
	Role             Role       `json:"role"`
	Balance          Amount     `json:"balance"`
	PurchasedLessons []LessonID `json:"purchasedLessons"`
}

// Owns reports whether the lesson id is in the user's entitlement set.
func (u User) Owns(id LessonID) bool {
	for _, l := range u.PurchasedLessons {
		if l == id {
			return true
		}
	}
	return false
}

func (u User) clone() User {
	out := u
	out.PurchasedLessons = append([]LessonID(nil), u.PurchasedLessons...)
	return out
}

// =============================================================================
// LESSON - Catalog entry
// =============================================================================

// Lesson is a catalog entry. ViewLimit is the number of playback sessions a
// purchase grants; VideoRef/ThumbnailRef are opaque location identifiers.
type Lesson struct {
	ID           LessonID `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        Amount   `json:"price"`
	ViewLimit    int      `json:"viewLimit"`
	VideoRef     string   `json:"videoRef"`
	ThumbnailRef string   `json:"thumbnailRef"`
}

// =============================================================================
// ENTITLEMENT RECORD - Per (user, lesson) consumption counter
// =============================================================================

// EntitlementRecord is created exactly once, by a successful purchase, and
// mutated only by RecordConsumption. It is never deleted, even when the
// lesson it references is removed from the catalog.
type EntitlementRecord struct {
	UserID       UserID    `json:"userId"`
	LessonID     LessonID  `json:"lessonId"`
	ViewsUsed    int       `json:"viewsUsed"`
	PurchaseDate time.Time `json:"purchaseDate"`
}

// =============================================================================
// DEPOSIT REQUEST - Wallet top-up workflow
// =============================================================================

type DepositStatus string

const (
	DepositPending  DepositStatus = "PENDING"
	DepositApproved DepositStatus = "APPROVED"
	DepositRejected DepositStatus = "REJECTED"
)

// DepositRequest is the only path by which student action can increase a
// balance. Status moves PENDING -> APPROVED or PENDING -> REJECTED exactly
// once; both end states are terminal.
type DepositRequest struct {
	ID        DepositID     `json:"id"`
	UserID    UserID        `json:"userId"`
	Username  string        `json:"username"` // denormalized for display
	Amount    Amount        `json:"amount"`
	Status    DepositStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// =============================================================================
// APP STATE - The aggregate root
// =============================================================================

// AppState is the single aggregate every transition operates on. CurrentUser
// holds the session user's id, empty when logged out.
type AppState struct {
	Users           []User              `json:"users"`
	Lessons         []Lesson            `json:"lessons"`
	Activity        []EntitlementRecord `json:"activity"`
	DepositRequests []DepositRequest    `json:"depositRequests"`
	CurrentUser     UserID              `json:"currentUser"`
}

// Clone deep-copies the aggregate. Transitions always work on a clone so a
// failed or unpersisted transition leaves the previous snapshot untouched.
func (s AppState) Clone() AppState {
	out := AppState{
		Users:           make([]User, len(s.Users)),
		Lessons:         append([]Lesson(nil), s.Lessons...),
		Activity:        append([]EntitlementRecord(nil), s.Activity...),
		DepositRequests: append([]DepositRequest(nil), s.DepositRequests...),
		CurrentUser:     s.CurrentUser,
	}
	for i, u := range s.Users {
		out.Users[i] = u.clone()
	}
	return out
}

// userIndex returns the position of the user in Users, or -1.
func (s *AppState) userIndex(id UserID) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AppState) lessonIndex(id LessonID) int {
	for i := range s.Lessons {
		if s.Lessons[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AppState) activityIndex(userID UserID, lessonID LessonID) int {
	for i := range s.Activity {
		if s.Activity[i].UserID == userID && s.Activity[i].LessonID == lessonID {
			return i
		}
	}
	return -1
}

func (s *AppState) depositIndex(id DepositID) int {
	for i := range s.DepositRequests {
		if s.DepositRequests[i].ID == id {
			return i
		}
	}
	return -1
}

// sessionUser returns the current session user within this snapshot, or nil.
func (s *AppState) sessionUser() *User {
	if s.CurrentUser == "" {
		return nil
	}
	if i := s.userIndex(s.CurrentUser); i >= 0 {
		return &s.Users[i]
	}
	return nil
}
