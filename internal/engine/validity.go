package engine

import (
	"time"

	"github.com/lcharvet/sav-coverage/internal/model"
)

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// withinWindow checks start <= event <= end on calendar days, both ends
// inclusive.
func withinWindow(event, start, end time.Time) bool {
	return !event.Before(dateOnly(start)) && !event.After(dateOnly(end))
}

// withinHierarchy requires the event date inside the line, appendix and
// contract windows simultaneously.
func withinHierarchy(line model.Line, appendix model.Appendix, contract model.Contract, event time.Time) bool {
	return withinWindow(event, line.StartDate, line.EndDate) &&
		withinWindow(event, appendix.StartDate, appendix.EndDate) &&
		withinWindow(event, contract.StartDate, contract.EndDate)
}
