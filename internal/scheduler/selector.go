package scheduler

import (
	"time"

	"github.com/jhshakil/kocialpilot/internal/models"
)

// LatenessWindow bounds how far past its scheduled instant a post may still
// be auto-published. A post older than this is treated as missed.
const LatenessWindow = 120 * time.Second

const scheduleLayout = "2006-01-02 15:04"

// publishInstant combines a post's date and time fields into one instant,
// interpreted in the location of the reference time.
func publishInstant(post *models.ScheduledPost, now time.Time) (time.Time, bool) {
	at, err := time.ParseInLocation(scheduleLayout, post.Date+" "+post.Time, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// Due returns the scheduled posts whose publish instant has arrived and is
// less than LatenessWindow in the past, in input order. A post with a
// malformed date or time never matches.
func Due(posts []*models.ScheduledPost, now time.Time) []*models.ScheduledPost {
	var due []*models.ScheduledPost
	for _, post := range posts {
		if post.Status != models.PostStatusScheduled {
			continue
		}
		at, ok := publishInstant(post, now)
		if !ok {
			continue
		}
		if at.After(now) {
			continue
		}
		if now.Sub(at) < LatenessWindow {
			due = append(due, post)
		}
	}
	return due
}

// Missed returns the scheduled posts whose publish window has fully elapsed.
// They will never auto-publish and are reconciled to failed instead of
// stalling as scheduled forever.
func Missed(posts []*models.ScheduledPost, now time.Time) []*models.ScheduledPost {
	var missed []*models.ScheduledPost
	for _, post := range posts {
		if post.Status != models.PostStatusScheduled {
			continue
		}
		at, ok := publishInstant(post, now)
		if !ok {
			continue
		}
		if !at.After(now) && now.Sub(at) >= LatenessWindow {
			missed = append(missed, post)
		}
	}
	return missed
}
