package casso

import "github.com/davecgh/go-spew/spew"

// dumpTableau renders a tableau's rows for diagnostic logging. Only called
// on the cold path (an infeasible add being rolled back), so the
// reflection cost of spew doesn't matter.
func dumpTableau(t Tableau) string {
	return spew.Sdump(t.rows)
}
