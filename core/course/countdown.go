package course

import "time"

// ExamCountdown is the time left before the final exam.
type ExamCountdown struct {
	ExamDate  time.Time `json:"exam_date"`
	Days      int       `json:"days"`
	Hours     int       `json:"hours"`
	Minutes   int       `json:"minutes"`
	Seconds   int       `json:"seconds"`
	IsExamDay bool      `json:"is_exam_day"` // exam reached or passed, every counter is 0
}

func ComputeExamCountdown(exam, now time.Time) ExamCountdown {
	cd := ExamCountdown{ExamDate: exam}
	left := exam.Sub(now)
	if left <= 0 {
		cd.IsExamDay = true
		return cd
	}
	cd.Days = int(left / (24 * time.Hour))
	cd.Hours = int(left/time.Hour) % 24
	cd.Minutes = int(left/time.Minute) % 60
	cd.Seconds = int(left/time.Second) % 60
	return cd
}
