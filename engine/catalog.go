/*
catalog.go - Lesson catalog

PURPOSE:
  Simple CRUD over lesson definitions. The price and view-limit fields feed
  the entitlement ledger; everything else is display data. Removing a lesson
  retains any entitlement records that reference it — consumers treat the
  missing lookup as "unknown lesson".
*/
package engine

import "strings"

// LessonDraft carries the caller-supplied fields of a new lesson.
type LessonDraft struct {
	Title        string
	Description  string
	Price        Amount
	ViewLimit    int
	VideoRef     string
	ThumbnailRef string
}

// addLesson appends a lesson under a freshly generated id. When no thumbnail
// is supplied, a deterministic placeholder derived from the title is used.
func addLesson(s *AppState, draft LessonDraft, id LessonID) Lesson {
	thumb := draft.ThumbnailRef
	if thumb == "" {
		thumb = placeholderThumbnail(draft.Title)
	}
	lesson := Lesson{
		ID:           id,
		Title:        draft.Title,
		Description:  draft.Description,
		Price:        draft.Price,
		ViewLimit:    draft.ViewLimit,
		VideoRef:     draft.VideoRef,
		ThumbnailRef: thumb,
	}
	s.Lessons = append(s.Lessons, lesson)
	return lesson
}

// removeLesson deletes the lesson from the catalog. Entitlement records and
// purchased-lesson sets referencing it are deliberately left in place.
func removeLesson(s *AppState, id LessonID) error {
	i := s.lessonIndex(id)
	if i < 0 {
		return ErrLessonNotFound
	}
	s.Lessons = append(s.Lessons[:i], s.Lessons[i+1:]...)
	return nil
}

// placeholderThumbnail derives a stable placeholder URI from the title so
// the same title always yields the same image.
func placeholderThumbnail(title string) string {
	var seed strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			seed.WriteRune(r)
		}
	}
	if seed.Len() == 0 {
		seed.WriteString("lesson")
	}
	return "https://picsum.photos/seed/" + seed.String() + "/400/225"
}
