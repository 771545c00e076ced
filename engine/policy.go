/*
policy.go - Access control policy for role mutations

PURPOSE:
  A pure decision function over (actor, target) used by every operation that
  changes another user's role. Rules are evaluated in order; the first match
  denies with a reason so the caller can surface it.

RULES (in order):
  1. Deny if actor is not ADMIN or OWNER.
  2. Deny if target is the primary owner (immutable account).
  3. Deny if actor is ADMIN and target is OWNER.
  4. Deny if actor is the target (no self role-edit through this path).
  5. Otherwise allow.

The OWNER < ADMIN < STUDENT ordering elsewhere in the engine is display
ranking only; it grants nothing by itself.
*/
package engine

// canChangeRole applies the ordered deny rules. primaryOwner is the reserved
// username configured at engine construction.
func canChangeRole(actor, target User, primaryOwner string) error {
	if !actor.Role.IsStaff() {
		return &PermissionDeniedError{Reason: "only admins and owners can change roles"}
	}
	if target.Username == primaryOwner {
		return &PermissionDeniedError{Reason: "the primary owner account cannot be modified"}
	}
	if actor.Role == RoleAdmin && target.Role == RoleOwner {
		return &PermissionDeniedError{Reason: "admins cannot change owner permissions"}
	}
	if actor.ID == target.ID {
		return &PermissionDeniedError{Reason: "cannot change your own role"}
	}
	return nil
}

// changeRole is the role-change transition. The actor is the session user;
// denials are reported, never silently dropped.
func changeRole(s *AppState, targetID UserID, role Role, primaryOwner string) error {
	actor := s.sessionUser()
	if actor == nil {
		return ErrNoSession
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	ti := s.userIndex(targetID)
	if ti < 0 {
		return ErrUserNotFound
	}
	if err := canChangeRole(*actor, s.Users[ti], primaryOwner); err != nil {
		return err
	}
	s.Users[ti].Role = role
	return nil
}
