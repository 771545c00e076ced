/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the action surface. These decouple the engine's
  aggregate from the wire contract so fields can be renamed or hidden
  without touching the engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Boundary validation (amount > 0, required fields) is done in handlers.
  DTOs are pure data carriers.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/NOUR0003/star-academy/engine"
)

// =============================================================================
// USERS & SESSION
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	FullName         string   `json:"fullName"`
	Phone            string   `json:"phone"`
	FatherPhone      string   `json:"fatherPhone"`
	MotherPhone      string   `json:"motherPhone"`
	Role             string   `json:"role"`
	Balance          string   `json:"balance"`
	PurchasedLessons []string `json:"purchasedLessons"`
}

func toUserDTO(u engine.User) UserDTO {
	lessons := make([]string, len(u.PurchasedLessons))
	for i, id := range u.PurchasedLessons {
		lessons[i] = string(id)
	}
	return UserDTO{
		ID:               string(u.ID),
		Username:         u.Username,
		Email:            u.Email,
		FullName:         u.FullName,
		Phone:            u.Phone,
		FatherPhone:      u.FatherPhone,
		MotherPhone:      u.MotherPhone,
		Role:             string(u.Role),
		Balance:          u.Balance.String(),
		PurchasedLessons: lessons,
	}
}

// LoginRequest carries the identifier (email or phone). The password is
// accepted for form compatibility and deliberately ignored; there is no
// credential bypass.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password,omitempty"`
}

// RegisterRequest carries a registration candidate.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FullName    string `json:"fullName"`
	FatherPhone string `json:"fatherPhone"`
	MotherPhone string `json:"motherPhone"`
}

// RoleRequest sets a user's role.
type RoleRequest struct {
	Role string `json:"role"`
}

// DeltaRequest is a manual balance adjustment. Decimal accepts both quoted
// and bare JSON numbers.
type DeltaRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// =============================================================================
// LESSONS
// =============================================================================

// LessonDTO represents a catalog entry in API responses.
type LessonDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	ViewLimit    int    `json:"viewLimit"`
	VideoRef     string `json:"videoRef"`
	ThumbnailRef string `json:"thumbnailRef"`
}

func toLessonDTO(l engine.Lesson) LessonDTO {
	return LessonDTO{
		ID:           string(l.ID),
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price.String(),
		ViewLimit:    l.ViewLimit,
		VideoRef:     l.VideoRef,
		ThumbnailRef: l.ThumbnailRef,
	}
}

// CreateLessonRequest creates a catalog entry. ThumbnailRef may be empty;
// the engine derives a placeholder from the title.
type CreateLessonRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ViewLimit    int             `json:"viewLimit"`
	VideoRef     string          `json:"videoRef"`
	ThumbnailRef string          `json:"thumbnailRef"`
}

// =============================================================================
// DEPOSITS
// =============================================================================

// DepositDTO represents a deposit request in API responses.
type DepositDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func toDepositDTO(r engine.DepositRequest) DepositDTO {
	return DepositDTO{
		ID:        string(r.ID),
		UserID:    string(r.UserID),
		Username:  r.Username,
		Amount:    r.Amount.String(),
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.Format(timeLayout),
	}
}

// CreateDepositRequest files a wallet top-up request.
type CreateDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorDTO is the JSON error envelope.
type ErrorDTO struct {
	Error string `json:"error"`
}
