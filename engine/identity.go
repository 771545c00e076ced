/*
identity.go - Identity store: lookup, registration, primary owner

PURPOSE:
  Resolves identities for login and enforces registration uniqueness over
  username, email, and phone. Registration is the only way a new user enters
  the aggregate; every new user starts as STUDENT with a zero balance and an
  empty entitlement set, and immediately becomes the session user.

PRIMARY OWNER:
  Exactly one user, identified by a reserved username supplied at engine
  construction, is the primary owner. Its role can never change and it can
  never be the target of a role-change (enforced in policy.go).
*/
package engine

import "strings"

// Candidate carries the caller-supplied fields of a registration.
type Candidate struct {
	Username    string
	Email       string
	Phone       string
	FullName    string
	FatherPhone string
	MotherPhone string
}

// findByIdentifier returns the first user whose email or phone matches the
// identifier exactly. Used for login; username is not login-eligible.
func findByIdentifier(s *AppState, identifier string) (User, bool) {
	for _, u := range s.Users {
		if u.Email == identifier || u.Phone == identifier {
			return u.clone(), true
		}
	}
	return User{}, false
}

// register validates uniqueness and appends the new user, making it the
// session user. The id must be freshly generated by the caller.
func register(s *AppState, cand Candidate, id UserID) (User, error) {
	cand.Username = strings.TrimSpace(cand.Username)
	cand.Email = strings.TrimSpace(cand.Email)
	cand.Phone = strings.TrimSpace(cand.Phone)

	for _, u := range s.Users {
		switch {
		case u.Username == cand.Username:
			return User{}, &DuplicateIdentityError{Field: "username", Value: cand.Username}
		case u.Email == cand.Email:
			return User{}, &DuplicateIdentityError{Field: "email", Value: cand.Email}
		case u.Phone == cand.Phone:
			return User{}, &DuplicateIdentityError{Field: "phone", Value: cand.Phone}
		}
	}

	user := User{
		ID:               id,
		Username:         cand.Username,
		Email:            cand.Email,
		FullName:         cand.FullName,
		Phone:            cand.Phone,
		FatherPhone:      cand.FatherPhone,
		MotherPhone:      cand.MotherPhone,
		Role:             RoleStudent,
		Balance:          NewAmountFromInt(0),
		PurchasedLessons: []LessonID{},
	}
	s.Users = append(s.Users, user)
	s.CurrentUser = user.ID
	return user.clone(), nil
}

// login resolves the identifier and makes the matched user the session user.
func login(s *AppState, identifier string) (User, error) {
	user, ok := findByIdentifier(s, identifier)
	if !ok {
		return User{}, ErrUserNotFound
	}
	s.CurrentUser = user.ID
	return user, nil
}

// logout clears the session. Logging out while logged out is a no-op.
func logout(s *AppState) {
	s.CurrentUser = ""
}
