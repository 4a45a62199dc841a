package expansion

import (
	"time"

	"cloud.google.com/go/civil"
)

// ResolveDeadline returns the calendar date offset whole days after ref's date
// in ref's location. A nil offset means no deadline. Time of day is ignored.
func ResolveDeadline(ref time.Time, offset *int) *civil.Date {
	if offset == nil {
		return nil
	}
	d := civil.DateOf(ref).AddDays(*offset)
	return &d
}
