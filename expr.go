package casso

import "sort"

// epsilon is the tolerance used to decide whether a coefficient has become
// zero during construction. spec.md leaves exact-vs-epsilon comparison as
// an open question; this keeps the teacher's choice (1e-8), since the
// teacher's own pivot loops rely on it to avoid accumulating near-zero
// terms across many substitutions.
const epsilon = 1.0e-8

func isZero(v float64) bool {
	if v < 0 {
		return -v < epsilon
	}
	return v < epsilon
}

// LinearExpression is an immutable symbolic linear combination
// c0 + sum(ci * vi). Every operation returns a new value; the receiver is
// never modified.
type LinearExpression struct {
	constant float64
	terms    map[string]float64
}

// NewConstant returns the constant expression with no terms.
func NewConstant(c float64) LinearExpression {
	return LinearExpression{constant: c}
}

// WithTerms builds an expression from a constant plus parallel name/
// coefficient slices. Duplicate names are summed; a name whose final
// coefficient rounds to zero is dropped unless it is a dummy variable,
// which survives at coefficient 0 so it can still be located and removed
// as a constraint marker.
func WithTerms(constant float64, names []string, coeffs []float64) LinearExpression {
	e := LinearExpression{constant: constant, terms: make(map[string]float64, len(names))}
	for i, name := range names {
		e.addTerm(name, coeffs[i])
	}
	return e
}

// singleTerm is a convenience constructor for a constant plus one term; it
// builds the objective expression in ConstraintSet.Minimize.
func singleTerm(constant float64, name string, coeff float64) LinearExpression {
	e := LinearExpression{constant: constant}
	e.addTerm(name, coeff)
	return e
}

func (e *LinearExpression) ensureTerms() {
	if e.terms == nil {
		e.terms = make(map[string]float64)
	}
}

// addTerm merges coeff into the existing coefficient for name, dropping the
// entry if the result rounds to zero (except for dummy variables).
func (e *LinearExpression) addTerm(name string, coeff float64) {
	cur, exists := e.terms[name]
	if !exists {
		if isZero(coeff) && !IsDummy(name) {
			return
		}
		e.ensureTerms()
		e.terms[name] = coeff
		return
	}
	sum := cur + coeff
	if isZero(sum) && !IsDummy(name) {
		delete(e.terms, name)
		return
	}
	e.terms[name] = sum
}

// insertDummyMarker inserts name with an explicit (possibly zero)
// coefficient, bypassing the zero-drop rule. Its one caller is the
// constraint builder minting a dummy marker for a required equality. Note
// that addTerm also keeps any dummy whose coefficient sums to zero, so
// zero-coefficient dummies can also arise from WithTerms, Substitute and
// the other operations built on addTerm.
func (e *LinearExpression) insertDummyMarker(name string, coeff float64) {
	e.ensureTerms()
	e.terms[name] = coeff
}

// addExpr adds coeff * other into e in place.
func (e *LinearExpression) addExpr(coeff float64, other LinearExpression) {
	e.constant += coeff * other.constant
	for name, c := range other.terms {
		e.addTerm(name, coeff*c)
	}
}

// clone returns a deep copy so in-place helpers can be used to build a
// fresh value without aliasing the receiver's map.
func (e LinearExpression) clone() LinearExpression {
	out := LinearExpression{constant: e.constant}
	if len(e.terms) > 0 {
		out.terms = make(map[string]float64, len(e.terms))
		for name, c := range e.terms {
			out.terms[name] = c
		}
	}
	return out
}

// Constant returns the constant term.
func (e LinearExpression) Constant() float64 { return e.constant }

// IsConstant reports whether the expression has no terms.
func (e LinearExpression) IsConstant() bool { return len(e.terms) == 0 }

// IsParametric reports whether the expression has at least one term.
func (e LinearExpression) IsParametric() bool { return len(e.terms) != 0 }

// CoefficientFor returns the coefficient of name, or 0 if absent.
func (e LinearExpression) CoefficientFor(name string) float64 {
	return e.terms[name]
}

// Contains reports whether name has a stored term (including an explicit
// zero-coefficient dummy marker).
func (e LinearExpression) Contains(name string) bool {
	_, ok := e.terms[name]
	return ok
}

// TermNames returns the expression's variable names in sorted order, for
// callers that need deterministic iteration (spec.md §5's ordering rule).
func (e LinearExpression) TermNames() []string {
	names := make([]string, 0, len(e.terms))
	for name := range e.terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Negate returns -constant and every coefficient negated.
func (e LinearExpression) Negate() LinearExpression {
	out := e.clone()
	out.constant = -out.constant
	for name, c := range out.terms {
		out.terms[name] = -c
	}
	return out
}

// Scale multiplies the constant and every coefficient by k. Scaling by 0
// collapses the expression to the zero constant.
func (e LinearExpression) Scale(k float64) LinearExpression {
	if k == 0 {
		return NewConstant(0)
	}
	out := e.clone()
	out.constant *= k
	for name, c := range out.terms {
		out.terms[name] = c * k
	}
	return out
}

// RemoveTerm drops the term for name, if present.
func (e LinearExpression) RemoveTerm(name string) LinearExpression {
	if !e.Contains(name) {
		return e
	}
	out := e.clone()
	delete(out.terms, name)
	return out
}

// Substitute replaces the term for name (if present) with coeff*other,
// where coeff is name's coefficient in e. If name is absent, e is returned
// unchanged.
func (e LinearExpression) Substitute(name string, other LinearExpression) LinearExpression {
	coeff, ok := e.terms[name]
	if !ok {
		return e
	}
	out := e.clone()
	delete(out.terms, name)
	out.addExpr(coeff, other)
	return out
}

// SolveFor interprets e as the right-hand side of `0 = e` and rearranges it
// into the right-hand side of `name = ...`. Returns *NotPresentError if
// name does not appear in e or its coefficient is zero.
func (e LinearExpression) SolveFor(name string) (LinearExpression, error) {
	coeff, ok := e.terms[name]
	if !ok || coeff == 0 {
		return LinearExpression{}, &NotPresentError{Variable: name}
	}

	out := e.clone()
	delete(out.terms, name)

	k := -1.0 / coeff
	if k == 1.0 {
		return out, nil
	}

	out.constant *= k
	for n, c := range out.terms {
		out.terms[n] = c * k
	}
	return out, nil
}

// ChangeSubject interprets e as the right-hand side of `current = e` and
// returns the right-hand side of `updated = ...`, where updated must appear
// in e with a nonzero coefficient. This is the algebraic heart of a tableau
// pivot: add -1*current as a term, then solve for updated.
func (e LinearExpression) ChangeSubject(current, updated string) (LinearExpression, error) {
	out := e.clone()
	out.addTerm(current, -1.0)
	return out.SolveFor(updated)
}

// UnrestrictedVariableNames returns, in sorted order, the names among e's
// terms that are external or objective variables.
func (e LinearExpression) UnrestrictedVariableNames() []string {
	var names []string
	for name := range e.terms {
		if IsUnrestricted(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Equal reports bit-exact structural equality: equal constants and equal
// term maps, coefficient for coefficient.
func (e LinearExpression) Equal(other LinearExpression) bool {
	if e.constant != other.constant {
		return false
	}
	if len(e.terms) != len(other.terms) {
		return false
	}
	for name, c := range e.terms {
		oc, ok := other.terms[name]
		if !ok || oc != c {
			return false
		}
	}
	return true
}
