package schedule

import "time"

// ComputeTeachingHours sums planned minutes over sessions and counts those that ended strictly before now
// as completed. Session times are read in now's location.
func ComputeTeachingHours(sessions []ClassSession, now time.Time) TeachingHours {
	var th TeachingHours
	loc := now.Location()
	for _, s := range sessions {
		mins := s.DurationMinutes()
		th.PlannedMinutes += mins
		if s.EndsAt(loc).Before(now) {
			th.CompletedMinutes += mins
		}
	}
	th.RemainingMinutes = th.PlannedMinutes - th.CompletedMinutes
	return th
}

// FindNextSession returns the earliest session starting strictly after now.
// The first one in collection order wins a tie.
func FindNextSession(sessions []ClassSession, now time.Time) (ClassSession, bool) {
	var (
		next      ClassSession
		nextStart time.Time
		found     bool
	)
	loc := now.Location()
	for _, s := range sessions {
		start := s.StartsAt(loc)
		if !start.After(now) {
			continue
		}
		if !found || start.Before(nextStart) {
			next, nextStart, found = s, start, true
		}
	}
	return next, found
}
