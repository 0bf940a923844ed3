package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect describes what differs between supported SQL backends.
type Dialect struct {
	// Name is used in log lines and error messages.
	Name string

	// Numbered rewrites "?" placeholders to "$1", "$2", ...
	Numbered bool

	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint failure from the driver.
	IsUniqueViolation func(err error) bool
}

// Rebind rewrites a query written with "?" placeholders for the dialect.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (d Dialect) uniqueViolation(err error) bool {
	return err != nil && d.IsUniqueViolation != nil && d.IsUniqueViolation(err)
}
