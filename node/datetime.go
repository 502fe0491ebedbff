package node

import "time"

// dateTimeLayouts are tried in order by ParseDateTime.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

// now is replaced in tests.
var now = time.Now

// ParseDateTime parses a date-time default value. "now" yields the current
// time; unparsable values yield the zero time.
func ParseDateTime(s string) time.Time {
	if s == "now" {
		return now()
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
