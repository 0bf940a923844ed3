package sqlstore

import "testing"

// SetMaxInArgs lowers the IN-list batch size until t finishes.
func SetMaxInArgs(t testing.TB, n int) {
	old := maxInArgs
	maxInArgs = n
	t.Cleanup(func() { maxInArgs = old })
}
