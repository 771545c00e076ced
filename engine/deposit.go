/*
deposit.go - Deposit request state machine

PURPOSE:
  The approval pipeline by which student-requested wallet top-ups become
  real balance. This is the only path (besides admin adjustment) that can
  increase a non-owner's balance.

STATE MACHINE:

   requestDeposit          processDeposit(approve)
        │                          │
        ▼                          ▼
   ┌─────────┐  approve  ┌──────────┐
   │ PENDING │──────────▶│ APPROVED │  balance += amount (clamping adjust)
   └─────────┘           └──────────┘
        │
        │  reject        ┌──────────┐
        └───────────────▶│ REJECTED │  no balance change
                         └──────────┘

  APPROVED and REJECTED are terminal. Processing a request that is missing
  or not PENDING fails with no mutation. Amount positivity is enforced at
  the caller-facing boundary, not here.
*/
package engine

import "time"

// requestDeposit creates a PENDING request for the session user.
func requestDeposit(s *AppState, amount Amount, id DepositID, now time.Time) (DepositRequest, error) {
	user := s.sessionUser()
	if user == nil {
		return DepositRequest{}, ErrNoSession
	}
	req := DepositRequest{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Amount:    amount,
		Status:    DepositPending,
		CreatedAt: now,
	}
	s.DepositRequests = append(s.DepositRequests, req)
	return req, nil
}

// processDeposit decides a PENDING request. On approval the requester's
// wallet is credited via the clamping adjust; on rejection nothing but the
// status changes. Either way the decision is applied at most once.
func processDeposit(s *AppState, id DepositID, approve bool) error {
	ri := s.depositIndex(id)
	if ri < 0 {
		return ErrRequestNotFound
	}
	req := &s.DepositRequests[ri]
	if req.Status != DepositPending {
		return ErrInvalidTransition
	}

	if approve {
		ui := s.userIndex(req.UserID)
		if ui < 0 {
			return ErrUserNotFound
		}
		adjust(&s.Users[ui], req.Amount)
		req.Status = DepositApproved
		return nil
	}

	req.Status = DepositRejected
	return nil
}
