package casso

import (
	"strconv"
	"strings"
)

// Reserved name prefixes. A variable's class is derived purely from its
// name; there is no side table mapping names to kinds.
const (
	slackPrefix     = "s_"
	dummyPrefix     = "d_"
	objectivePrefix = "z_"
)

// Kind classifies a variable name into one of the four classes the solver
// cares about.
type Kind uint8

const (
	External Kind = iota
	Slack
	Dummy
	Objective
)

var kindNames = [...]string{
	External:  "External",
	Slack:     "Slack",
	Dummy:     "Dummy",
	Objective: "Objective",
}

func (k Kind) String() string { return kindNames[k] }

// Restricted reports whether variables of this kind are required to be
// non-negative (slack and dummy variables).
func (k Kind) Restricted() bool { return k == Slack || k == Dummy }

// KindOf classifies a variable name by its prefix.
func KindOf(name string) Kind {
	switch {
	case strings.HasPrefix(name, slackPrefix):
		return Slack
	case strings.HasPrefix(name, dummyPrefix):
		return Dummy
	case strings.HasPrefix(name, objectivePrefix):
		return Objective
	default:
		return External
	}
}

// IsExternal reports whether name refers to a user-facing quantity with no
// reserved prefix.
func IsExternal(name string) bool { return KindOf(name) == External }

// IsSlack reports whether name is a slack variable introduced to convert an
// inequality into an equality.
func IsSlack(name string) bool { return KindOf(name) == Slack }

// IsDummy reports whether name is the marker variable of a required
// equality.
func IsDummy(name string) bool { return KindOf(name) == Dummy }

// IsObjective reports whether name is the left-hand side of an objective
// row.
func IsObjective(name string) bool { return KindOf(name) == Objective }

// IsRestricted reports whether name must stay non-negative (slack or
// dummy).
func IsRestricted(name string) bool { return KindOf(name).Restricted() }

// IsUnrestricted reports whether name is free to take any sign (external or
// objective).
func IsUnrestricted(name string) bool { return !IsRestricted(name) }

// nameGenerator mints fresh, unique marker names for a single ConstraintSet.
// It is deliberately not process-global: spec.md's design notes call out
// that sharing one counter across independently-constructed solvers is
// unnecessary coupling, unlike the teacher, which used a package-level
// atomic counter for every symbol it minted.
type nameGenerator struct {
	next uint64
}

func (g *nameGenerator) slack() string {
	g.next++
	return slackPrefix + strconv.FormatUint(g.next, 10)
}

func (g *nameGenerator) dummy() string {
	g.next++
	return dummyPrefix + strconv.FormatUint(g.next, 10)
}

func (g *nameGenerator) objective() string {
	g.next++
	return objectivePrefix + strconv.FormatUint(g.next, 10)
}
