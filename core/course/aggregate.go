package course

import "math"

// ComputeProgress classifies every lesson of modules by status.
func ComputeProgress(modules []Module) AggregateProgress {
	var p AggregateProgress
	for _, m := range modules {
		for _, l := range m.Lessons {
			p.TotalLessons++
			switch l.Status {
			case StatusCompleted:
				p.CompletedLessons++
				if l.DurationMinutes.Valid {
					p.CompletedMinutes += l.DurationMinutes.Int
				}
			case StatusInProgress:
				p.InProgressLessons++
			default:
				p.NotStartedLessons++
			}
		}
	}
	p.CompletionPercentage = percentage(p.CompletedLessons, p.TotalLessons)
	return p
}

// ComputeModuleProgress returns the rounded percentage of completed lessons in m, 0 when it has none.
func ComputeModuleProgress(m Module) int {
	var completed int
	for _, l := range m.Lessons {
		if l.Status == StatusCompleted {
			completed++
		}
	}
	return percentage(completed, len(m.Lessons))
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
