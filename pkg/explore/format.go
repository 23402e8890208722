package explore

import (
	"fmt"
	"time"
)

// FailureCounterText is shown in the results counter when a search request fails.
const FailureCounterText = "0 results found"

// DateLayout renders creation dates as "January 2, 2006, 3:04 PM".
const DateLayout = "January 2, 2006, 3:04 PM"

// CounterText returns the results counter label for n datasets.
func CounterText(n int) string {
	if n == 1 {
		return "1 dataset found"
	}
	return fmt.Sprintf("%d datasets found", n)
}

// FormatDate formats t in loc using DateLayout. A nil loc means local time.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// AuthorLine renders an author as "name (affiliation) (orcid)", omitting the
// parts that are empty.
func AuthorLine(a Author) string {
	s := a.Name
	if a.Affiliation != "" {
		s += " (" + a.Affiliation + ")"
	}
	if a.ORCID != "" {
		s += " (" + a.ORCID + ")"
	}
	return s
}
