package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOUR0003/star-academy/engine"
)

// roleOf re-reads a user's role from the current snapshot.
func roleOf(t *testing.T, eng *engine.Engine, id engine.UserID) engine.Role {
	t.Helper()
	for _, u := range eng.Snapshot().Users {
		if u.ID == id {
			return u.Role
		}
	}
	t.Fatalf("user %s not found", id)
	return ""
}

func TestChangeRole_OwnerPromotesStudent(t *testing.T) {
	// GIVEN: The owner is acting on a student
	eng := newTestEngine(t)
	student := registerStudent(t, eng, "ahmed")
	loginOwner(t, eng)

	// WHEN: Promoting to ADMIN
	err := eng.ChangeUserRole(context.Background(), student.ID, engine.RoleAdmin)

	// THEN: The role changes
	require.NoError(t, err)
	assert.Equal(t, engine.RoleAdmin, roleOf(t, eng, student.ID))
}

func TestChangeRole_StudentActorDenied(t *testing.T) {
	// GIVEN: A student acting on another student
	eng := newTestEngine(t)
	target := registerStudent(t, eng, "mona")
	registerStudent(t, eng, "ahmed") // session user, STUDENT

	// WHEN/THEN: Denied, role unchanged
	err := eng.ChangeUserRole(context.Background(), target.ID, engine.RoleAdmin)
	require.ErrorIs(t, err, engine.ErrPermissionDenied)
	assert.Equal(t, engine.RoleStudent, roleOf(t, eng, target.ID))
}

func TestChangeRole_PrimaryOwnerImmutable(t *testing.T) {
	// Even another OWNER cannot touch the primary owner account.
	eng := newTestEngine(t)
	second := registerStudent(t, eng, "coowner")
	owner := loginOwner(t, eng)
	require.NoError(t, eng.ChangeUserRole(context.Background(), second.ID, engine.RoleOwner))

	_, err := eng.Login(context.Background(), "coowner@example.com")
	require.NoError(t, err)

	err = eng.ChangeUserRole(context.Background(), owner.ID, engine.RoleStudent)

	require.ErrorIs(t, err, engine.ErrPermissionDenied)
	assert.Equal(t, engine.RoleOwner, roleOf(t, eng, owner.ID))
}

func TestChangeRole_AdminCannotAlterOwner(t *testing.T) {
	// GIVEN: An ADMIN acting on a (non-primary) OWNER
	eng := newTestEngine(t)
	coowner := registerStudent(t, eng, "coowner")
	admin := registerStudent(t, eng, "admin")
	loginOwner(t, eng)
	require.NoError(t, eng.ChangeUserRole(context.Background(), coowner.ID, engine.RoleOwner))
	require.NoError(t, eng.ChangeUserRole(context.Background(), admin.ID, engine.RoleAdmin))

	_, err := eng.Login(context.Background(), "admin@example.com")
	require.NoError(t, err)

	// WHEN/THEN: Rule 3 denies regardless of the requested role
	err = eng.ChangeUserRole(context.Background(), coowner.ID, engine.RoleStudent)
	require.ErrorIs(t, err, engine.ErrPermissionDenied)
	assert.Equal(t, engine.RoleOwner, roleOf(t, eng, coowner.ID))
}

func TestChangeRole_NoSelfEdit(t *testing.T) {
	// GIVEN: An ADMIN acting on itself
	eng := newTestEngine(t)
	admin := registerStudent(t, eng, "admin")
	loginOwner(t, eng)
	require.NoError(t, eng.ChangeUserRole(context.Background(), admin.ID, engine.RoleAdmin))

	_, err := eng.Login(context.Background(), "admin@example.com")
	require.NoError(t, err)

	err = eng.ChangeUserRole(context.Background(), admin.ID, engine.RoleOwner)

	require.ErrorIs(t, err, engine.ErrPermissionDenied)
	assert.Equal(t, engine.RoleAdmin, roleOf(t, eng, admin.ID))
}

func TestChangeRole_Validation(t *testing.T) {
	eng := newTestEngine(t)
	student := registerStudent(t, eng, "ahmed")
	loginOwner(t, eng)

	// Unknown role
	err := eng.ChangeUserRole(context.Background(), student.ID, engine.Role("TEACHER"))
	require.ErrorIs(t, err, engine.ErrInvalidRole)

	// Unknown target
	err = eng.ChangeUserRole(context.Background(), "u-missing", engine.RoleAdmin)
	require.ErrorIs(t, err, engine.ErrUserNotFound)

	// No session at all
	require.NoError(t, eng.Logout(context.Background()))
	err = eng.ChangeUserRole(context.Background(), student.ID, engine.RoleAdmin)
	require.ErrorIs(t, err, engine.ErrNoSession)
}
