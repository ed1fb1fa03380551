package casso_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vplcassowary/casso"
)

func TestTableauSetRowAndLookup(t *testing.T) {
	tab := casso.NewTableau()
	row := casso.WithTerms(10, []string{"s_1"}, []float64{1})

	tab, err := tab.SetRow("x", row)
	require.NoError(t, err)

	got, ok := tab.ExpressionFor("x")
	require.True(t, ok)
	require.True(t, got.Equal(row))
	require.Equal(t, []string{"x"}, tab.RowVariableNames())
	require.Equal(t, []string{"s_1"}, tab.ColumnVariableNames())
}

func TestTableauSetRowRejectsExistingRow(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.NewConstant(1))
	_, err := tab.SetRow("x", casso.NewConstant(2))
	require.Error(t, err)
}

func TestTableauSetRowRejectsExistingColumn(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.WithTerms(0, []string{"s_1"}, []float64{1}))
	_, err := tab.SetRow("s_1", casso.NewConstant(5))
	require.Error(t, err)
}

func TestTableauReplaceRowVariables(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.WithTerms(10, []string{"s_1"}, []float64{1}))

	e := casso.WithTerms(0, []string{"x", "y"}, []float64{1, 1})
	out := tab.ReplaceRowVariables(e)

	require.False(t, out.Contains("x"))
	require.EqualValues(t, 10, out.Constant())
	require.EqualValues(t, 1, out.CoefficientFor("s_1"))
	require.EqualValues(t, 1, out.CoefficientFor("y"))
}

func TestTableauPivot(t *testing.T) {
	tab := casso.NewTableau()
	// x = 10 + s_1
	tab, _ = tab.SetRow("x", casso.WithTerms(10, []string{"s_1"}, []float64{1}))

	pivoted, err := tab.Pivot("x", "s_1")
	require.NoError(t, err)

	_, xIsRow := pivoted.ExpressionFor("x")
	require.False(t, xIsRow)

	s1Row, ok := pivoted.ExpressionFor("s_1")
	require.True(t, ok)
	// s_1 = -10 + x
	require.EqualValues(t, -10, s1Row.Constant())
	require.EqualValues(t, 1, s1Row.CoefficientFor("x"))
}

func TestTableauPivotRejectsMissingRow(t *testing.T) {
	tab := casso.NewTableau()
	_, err := tab.Pivot("x", "s_1")
	require.Error(t, err)
}

func TestTableauPivotRejectsAbsentColumn(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.NewConstant(10))
	_, err := tab.Pivot("x", "s_1")
	require.Error(t, err)
}

func TestTableauSubstituteColumnRemovesEverywhere(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.WithTerms(10, []string{"s_1"}, []float64{2}))
	tab, _ = tab.SetRow("y", casso.WithTerms(5, []string{"s_1"}, []float64{3}))

	replacement := casso.WithTerms(1, []string{"s_2"}, []float64{1})
	tab = tab.SubstituteColumn("s_1", replacement)

	xRow, _ := tab.ExpressionFor("x")
	require.False(t, xRow.Contains("s_1"))
	require.EqualValues(t, 12, xRow.Constant()) // 10 + 2*1
	require.EqualValues(t, 2, xRow.CoefficientFor("s_2"))

	yRow, _ := tab.ExpressionFor("y")
	require.EqualValues(t, 8, yRow.Constant()) // 5 + 3*1
}

func TestTableauDisjointnessAfterPivot(t *testing.T) {
	tab := casso.NewTableau()
	tab, _ = tab.SetRow("x", casso.WithTerms(10, []string{"s_1"}, []float64{1}))
	tab, _ = tab.SetRow("y", casso.WithTerms(5, []string{"s_1"}, []float64{2}))

	pivoted, err := tab.Pivot("x", "s_1")
	require.NoError(t, err)

	for _, row := range pivoted.RowVariableNames() {
		e, _ := pivoted.ExpressionFor(row)
		for _, other := range pivoted.RowVariableNames() {
			require.False(t, e.Contains(other), "row %q must not reference row variable %q", row, other)
		}
	}
}

func TestTableauMinimizeAlreadyOptimal(t *testing.T) {
	tab := casso.NewTableau()
	// objective z_1 = s_1: the only column is restricted and has a positive
	// coefficient, so the entry search finds nothing to improve and the
	// objective row comes back unchanged.
	tab, _ = tab.SetRow("z_1", casso.WithTerms(0, []string{"s_1"}, []float64{1}))

	out, err := tab.Minimize("z_1")
	require.NoError(t, err)

	before, _ := tab.ExpressionFor("z_1")
	after, ok := out.ExpressionFor("z_1")
	require.True(t, ok)
	require.True(t, before.Equal(after))
}

func TestTableauMinimizePivotsUntilNoNegativeCoefficient(t *testing.T) {
	tab := casso.NewTableau()
	// objective z = 5 - s_1 (restricted s_1 has a negative coefficient, so
	// increasing it decreases z).
	tab, _ = tab.SetRow("z_1", casso.WithTerms(5, []string{"s_1"}, []float64{-1}))
	// s_2 = 3 - s_1 bounds how far s_1 can increase before s_2 goes negative.
	tab, _ = tab.SetRow("s_2", casso.WithTerms(3, []string{"s_1"}, []float64{-1}))

	out, err := tab.Minimize("z_1")
	require.NoError(t, err)

	objRow, ok := out.ExpressionFor("z_1")
	require.True(t, ok)
	require.EqualValues(t, 2, objRow.Constant())
	require.False(t, objRow.Contains("s_1"))
	require.False(t, objRow.CoefficientFor("s_2") < 0)

	s1Row, ok := out.ExpressionFor("s_1")
	require.True(t, ok)
	require.EqualValues(t, 3, s1Row.Constant())
}
