/*
wallet.go - Atomic balance mutation primitives

PURPOSE:
  Two deliberately distinct mutation semantics:

  adjust: balance = max(0, balance + delta). Used by manual admin edits and
          deposit approvals. A negative delta larger than the balance floors
          to zero rather than failing. Never unify this with debit.

  debit:  hard-fails with InsufficientFundsError when balance < amount and
          mutates nothing. Used by the purchase flow.

Both preserve the invariant balance >= 0 for every user at all times.
*/
package engine

// adjust applies a clamping balance change to the user in place.
func adjust(u *User, delta Amount) {
	next := u.Balance.Add(delta)
	if next.IsNegative() {
		next = NewAmountFromInt(0)
	}
	u.Balance = next
}

// debit removes amount from the user's balance, failing without mutation
// when funds are insufficient.
func debit(u *User, amount Amount) error {
	if u.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			UserID:    u.ID,
			Available: u.Balance,
			Requested: amount,
		}
	}
	u.Balance = u.Balance.Sub(amount)
	return nil
}

// adjustBalance is the admin-facing transition wrapping adjust.
func adjustBalance(s *AppState, userID UserID, delta Amount) error {
	i := s.userIndex(userID)
	if i < 0 {
		return ErrUserNotFound
	}
	adjust(&s.Users[i], delta)
	return nil
}
