package casso

import "fmt"

// ConstraintSet is the incremental solver: an append-only sequence of
// Add/Remove calls maintaining a Tableau in basic feasible solved form.
// Because Tableau and LinearExpression are immutable values, a failed Add
// never needs explicit rollback logic -- the local chain of new values is
// simply discarded and cs.tableau is never reassigned.
type ConstraintSet struct {
	tableau Tableau
	gen     nameGenerator
	added   map[string]struct{}

	logger         Logger
	iterationBound int
}

// NewConstraintSet returns an empty constraint set.
func NewConstraintSet(opts ...Option) *ConstraintSet {
	cs := &ConstraintSet{
		tableau: NewTableau(),
		added:   make(map[string]struct{}),
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// BuildConstraint constructs a Constraint from the layout-parser-facing
// subject/relation/related/multiplier/constant form. related == "" means
// no related variable (a pure constant bound).
func (cs *ConstraintSet) BuildConstraint(subject string, relation Relation, related string, multiplier, constant float64) (Constraint, error) {
	return buildConstraint(&cs.gen, subject, relation, related, related != "", multiplier, constant)
}

// BuildLinearConstraint constructs a Constraint from an arbitrary sum of
// named terms, for relations with more than two variables (e.g. "x+y=30").
func (cs *ConstraintSet) BuildLinearConstraint(relation Relation, names []string, coeffs []float64, constant float64) (Constraint, error) {
	return buildLinearConstraint(&cs.gen, relation, names, coeffs, constant)
}

func (cs *ConstraintSet) restoreBound(t Tableau) int {
	if cs.iterationBound > 0 {
		return cs.iterationBound
	}
	n := len(t.rows)
	bound := (n + 2) * (n + 2) * 4
	if bound < 64 {
		bound = 64
	}
	return bound
}

// chooseSubject picks the basic variable for a newly normalized row: the
// first (sorted) unrestricted variable still present in e, or else the
// constraint's own marker. If no unrestricted variable remains and every
// surviving term is a dummy, a nonzero residual constant means this
// constraint's required equality directly contradicts an equality already
// in the tableau -- grounded on the teacher's findSubject, which raises
// ErrBadDummyVariable in exactly this situation.
func chooseSubject(e LinearExpression, marker string) (string, error) {
	if unrestricted := e.UnrestrictedVariableNames(); len(unrestricted) > 0 {
		return unrestricted[0], nil
	}

	allDummy := true
	for _, name := range e.TermNames() {
		if !IsDummy(name) {
			allDummy = false
			break
		}
	}
	if allDummy && !isZero(e.Constant()) {
		return "", &InfeasibleError{Reason: "required equality constraints are inconsistent"}
	}

	return marker, nil
}

// restoreFeasibility repeatedly pivots away negative-constant restricted
// rows (dual-simplex style): the row with the smallest name that violates
// feasibility, and within it the column with the smallest name carrying a
// negative coefficient. If a violating row has no such column, the system
// is infeasible.
func restoreFeasibility(t Tableau, bound int) (Tableau, error) {
	cur := t

	for iter := 0; ; iter++ {
		if iter > bound {
			return cur, ErrCyclingDetected
		}

		badRow := ""
		for _, row := range cur.RowVariableNames() {
			if !IsRestricted(row) {
				continue
			}
			e, _ := cur.ExpressionFor(row)
			if e.Constant() < 0 {
				badRow = row
				break
			}
		}
		if badRow == "" {
			return cur, nil
		}

		e, _ := cur.ExpressionFor(badRow)
		exitCol := ""
		for _, name := range e.TermNames() {
			if e.CoefficientFor(name) < 0 {
				exitCol = name
				break
			}
		}
		if exitCol == "" {
			return cur, &InfeasibleError{Reason: fmt.Sprintf("row %q has a negative constant with no column to restore it", badRow)}
		}

		next, err := cur.Pivot(badRow, exitCol)
		if err != nil {
			return cur, err
		}
		cur = next
	}
}

// Add normalizes c's expression against the current tableau, solves for a
// new basic variable, and restores feasibility. On any failure cs.tableau
// is left untouched and an error (typically *InfeasibleError) is returned.
func (cs *ConstraintSet) Add(c Constraint) error {
	e := cs.tableau.ReplaceRowVariables(c.Expression())

	subject, err := chooseSubject(e, c.Marker())
	if err != nil {
		cs.logger.Print("casso: add rejected: ", err)
		return err
	}

	solved, err := e.SolveFor(subject)
	if err != nil {
		return err
	}

	tab := cs.tableau.SubstituteColumn(subject, solved)
	tab, err = tab.SetRow(subject, solved)
	if err != nil {
		return err
	}

	tab, err = restoreFeasibility(tab, cs.restoreBound(tab))
	if err != nil {
		cs.logger.Print("casso: add rolled back, tableau was ", dumpTableau(cs.tableau), ": ", err)
		return err
	}

	cs.tableau = tab
	cs.added[c.Marker()] = struct{}{}
	return nil
}

// selectRemovalExitRow picks the row to pivot marker out of a column
// position before it can be dropped: a restricted row where marker has a
// negative coefficient, minimizing constant/-coefficient (smallest row name
// on ties); failing that, any row that still mentions marker at all.
func selectRemovalExitRow(t Tableau, marker string) (string, bool) {
	best := ""
	bestRatio := 0.0
	found := false

	for _, row := range t.RowVariableNames() {
		e, _ := t.ExpressionFor(row)
		if !e.Contains(marker) || !IsRestricted(row) {
			continue
		}
		coeff := e.CoefficientFor(marker)
		if coeff >= 0 {
			continue
		}
		ratio := e.Constant() / -coeff
		if !found || ratio < bestRatio {
			bestRatio, best, found = ratio, row, true
		}
	}
	if found {
		return best, true
	}

	for _, row := range t.RowVariableNames() {
		e, _ := t.ExpressionFor(row)
		if e.Contains(marker) {
			return row, true
		}
	}
	return "", false
}

// Remove drops a previously added constraint. If c was never added (or was
// already removed), ErrConstraintNotFound is returned.
func (cs *ConstraintSet) Remove(c Constraint) error {
	marker := c.Marker()
	if _, ok := cs.added[marker]; !ok {
		return ErrConstraintNotFound
	}

	tab := cs.tableau

	if _, isRow := tab.ExpressionFor(marker); isRow {
		tab = tab.RemoveRow(marker)
	} else {
		exit, ok := selectRemovalExitRow(tab, marker)
		if !ok {
			return fmt.Errorf("casso: marker %q does not appear in the tableau", marker)
		}
		rowExpr, _ := tab.ExpressionFor(exit)
		pivoted, err := rowExpr.ChangeSubject(exit, marker)
		if err != nil {
			return err
		}
		tab = tab.RemoveRow(exit)
		tab = tab.SubstituteColumn(marker, pivoted)
	}

	tab, err := restoreFeasibility(tab, cs.restoreBound(tab))
	if err != nil {
		return err
	}

	cs.tableau = tab
	delete(cs.added, marker)
	return nil
}

// Contains reports whether c is currently part of the set.
func (cs *ConstraintSet) Contains(c Constraint) bool {
	_, ok := cs.added[c.Marker()]
	return ok
}

// ValueOf returns the current value of an external variable: its row's
// constant if it is a basic variable, or 0 if it's nonbasic (at its
// implicit lower bound) or never referenced.
func (cs *ConstraintSet) ValueOf(name string) float64 {
	e, ok := cs.tableau.ExpressionFor(name)
	if !ok {
		return 0
	}
	return e.Constant()
}

// Minimize drives target to its minimum feasible value by running the
// simplex optimize phase against a transient objective row, then discarding
// that row. It never mutates cs.tableau if the objective is unbounded.
func (cs *ConstraintSet) Minimize(target string) error {
	e := cs.tableau.ReplaceRowVariables(singleTerm(0, target, 1.0))

	objVar := cs.gen.objective()
	tab, err := cs.tableau.SetRow(objVar, e)
	if err != nil {
		return err
	}

	tab, err = tab.Minimize(objVar)
	if err != nil {
		return err
	}

	cs.tableau = tab.RemoveRow(objVar)
	return nil
}
