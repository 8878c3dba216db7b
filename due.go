package todoist

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type Due struct {
	// Date in the format of YYYY-MM-DD (RFC 3339). For recurring dates, the date of the current iteration.
	Date string `json:"date"`

	// Human-readable representation of the due date, in the user's language and timezone, e.g., "every monday".
	String string `json:"string"`

	// Only set for tasks due at a specific time, in RFC 3339 format in UTC.
	Datetime string `json:"datetime,omitempty"`

	// Only set for tasks with a due time tied to a timezone.
	Timezone string `json:"timezone,omitempty"`

	IsRecurring bool `json:"is_recurring"`
}

// Time returns the due time. Full-day due dates are treated as due at the end of the day, in UTC. The zero time
// is returned if the dates can not be parsed.
func (due Due) Time() time.Time {
	var t time.Time
	var err error
	if due.Datetime != "" {
		t, err = time.Parse(time.RFC3339, due.Datetime)
		if err != nil {
			// Floating due times come without an offset.
			t, err = time.Parse("2006-01-02T15:04:05", due.Datetime)
		}
	} else {
		t, err = time.Parse(time.RFC3339, due.Date+"T23:59:59Z")
	}
	if err != nil {
		log.WithFields(log.Fields{
			"cause":    err,
			"date":     due.Date,
			"datetime": due.Datetime,
		}).Warning("Could not parse time, has Todoist changed format?")
		return time.Time{}
	}
	return t
}
