// Package insights produces one consistent analytics snapshot for a scope
// and date range by fanning out the independent backend analytics queries,
// normalizing each response and merging partial failures into a single
// renderable result.
package insights

import (
	"fmt"
	"time"
)

// DateRange bounds an analytics query, inclusive, in local YYYY-MM-DD form.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}

// LastNDays returns the default dashboard range ending today.
func LastNDays(n int) DateRange {
	if n < 1 {
		n = 1
	}
	to := time.Now()
	from := to.AddDate(0, 0, -(n - 1))
	return DateRange{From: ymd(from), To: ymd(to)}
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s → %s", r.From, r.To)
}
