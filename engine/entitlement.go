/*
entitlement.go - Purchase flow and view metering

PURPOSE:
  The authority for "can this user watch this lesson right now". A purchase
  atomically debits the wallet, adds the lesson to the user's entitlement
  set, and creates the consumption record. No interleaved state with only
  some of those applied is ever observable.

VIEW METERING:
  canConsume is the access gate: owned AND viewsUsed < viewLimit. The
  counter itself is not clamped; recordConsumption increments whenever a
  record exists. The calling layer must check the gate before counting,
  once per playback session start (ordering contract).
*/
package engine

import "time"

// purchase executes the purchase transition for an explicit user. All three
// effects (debit, entitlement set, record) land together or not at all.
func purchase(s *AppState, userID UserID, lessonID LessonID, now time.Time) error {
	li := s.lessonIndex(lessonID)
	if li < 0 {
		return ErrLessonNotFound
	}
	ui := s.userIndex(userID)
	if ui < 0 {
		return ErrUserNotFound
	}
	user := &s.Users[ui]
	if user.Owns(lessonID) {
		return ErrAlreadyOwned
	}
	if err := debit(user, s.Lessons[li].Price); err != nil {
		return err
	}
	user.PurchasedLessons = append(user.PurchasedLessons, lessonID)
	s.Activity = append(s.Activity, EntitlementRecord{
		UserID:       userID,
		LessonID:     lessonID,
		ViewsUsed:    0,
		PurchaseDate: now,
	})
	return nil
}

// canConsume reports whether the user owns the lesson and still has quota.
// A lesson missing from the catalog (removed after purchase) is treated as
// unknown: the gate answers false rather than crashing.
func canConsume(s *AppState, userID UserID, lessonID LessonID) bool {
	li := s.lessonIndex(lessonID)
	if li < 0 {
		return false
	}
	ui := s.userIndex(userID)
	if ui < 0 || !s.Users[ui].Owns(lessonID) {
		return false
	}
	ai := s.activityIndex(userID, lessonID)
	if ai < 0 {
		return false
	}
	return s.Activity[ai].ViewsUsed < s.Lessons[li].ViewLimit
}

// recordConsumption increments the session user's counter for the lesson.
// No-op when there is no session or no matching record. Callers must check
// canConsume first; the counter does not self-limit.
func recordConsumption(s *AppState, lessonID LessonID) {
	user := s.sessionUser()
	if user == nil {
		return
	}
	if ai := s.activityIndex(user.ID, lessonID); ai >= 0 {
		s.Activity[ai].ViewsUsed++
	}
}
