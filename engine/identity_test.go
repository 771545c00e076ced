package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOUR0003/star-academy/engine"
)

func TestRegister_CreatesStudentAndOpensSession(t *testing.T) {
	// GIVEN: A fresh engine
	eng := newTestEngine(t)

	// WHEN: A candidate registers
	user, err := eng.Register(context.Background(), engine.Candidate{
		Username:    "ahmed",
		Email:       "ahmed@example.com",
		Phone:       "01000000001",
		FullName:    "Ahmed Student",
		FatherPhone: "01000000002",
		MotherPhone: "01000000003",
	})
	require.NoError(t, err)

	// THEN: A student with zero balance and empty entitlements exists and is
	// the session user
	assert.Equal(t, engine.RoleStudent, user.Role)
	assert.True(t, user.Balance.IsZero())
	assert.Empty(t, user.PurchasedLessons)
	assert.NotEmpty(t, user.ID)

	cur, ok := eng.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.ID, cur.ID)
}

func TestRegister_DuplicateIdentityRejected(t *testing.T) {
	eng := newTestEngine(t)
	registerStudent(t, eng, "ahmed")
	before := len(eng.Snapshot().Users)

	cases := []struct {
		name string
		cand engine.Candidate
	}{
		{"username", engine.Candidate{Username: "ahmed", Email: "x@example.com", Phone: "0109"}},
		{"email", engine.Candidate{Username: "other", Email: "ahmed@example.com", Phone: "0109"}},
		{"phone", engine.Candidate{Username: "other", Email: "x@example.com", Phone: "0100-ahmed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// WHEN: Registering with a clashing field
			_, err := eng.Register(context.Background(), tc.cand)

			// THEN: Rejected with the field named, user set unchanged
			require.ErrorIs(t, err, engine.ErrDuplicateIdentity)
			var dup *engine.DuplicateIdentityError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tc.name, dup.Field)
			assert.Len(t, eng.Snapshot().Users, before)
		})
	}
}

func TestLogin_ByEmailOrPhone(t *testing.T) {
	// GIVEN: A registered student, logged out
	eng := newTestEngine(t)
	user := registerStudent(t, eng, "ahmed")
	require.NoError(t, eng.Logout(context.Background()))

	// WHEN/THEN: Both login-eligible identifiers resolve the same user
	byEmail, err := eng.Login(context.Background(), "ahmed@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	require.NoError(t, eng.Logout(context.Background()))
	byPhone, err := eng.Login(context.Background(), "0100-ahmed")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Login(context.Background(), "nobody@example.com")

	require.ErrorIs(t, err, engine.ErrUserNotFound)
	_, ok := eng.CurrentUser()
	assert.False(t, ok)
}

func TestLogin_UsernameIsNotLoginEligible(t *testing.T) {
	// The reserved owner name resolves only through email or phone.
	eng := newTestEngine(t)

	_, err := eng.Login(context.Background(), "nour")

	require.ErrorIs(t, err, engine.ErrUserNotFound)
}

func TestLogout_ClearsSession(t *testing.T) {
	eng := newTestEngine(t)
	registerStudent(t, eng, "ahmed")

	require.NoError(t, eng.Logout(context.Background()))

	_, ok := eng.CurrentUser()
	assert.False(t, ok)

	// Logging out twice is harmless.
	require.NoError(t, eng.Logout(context.Background()))
}

func TestFindByIdentifier_DoesNotOpenSession(t *testing.T) {
	eng := newTestEngine(t)

	found, ok := eng.FindByIdentifier("nour@gmail.com")

	require.True(t, ok)
	assert.Equal(t, "nour", found.Username)
	_, active := eng.CurrentUser()
	assert.False(t, active)
}
