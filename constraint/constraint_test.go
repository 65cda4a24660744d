package constraint_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/stretchr/testify/require"
)

func TestSatisfiableEmpty(t *testing.T) {
	ok, err := constraint.Satisfiable(constraint.NewSet())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSatisfiableTightInterval(t *testing.T) {
	s := constraint.NewSet().
		Add("x", constraint.Atomic{Op: constraint.Ge, K: 1}).
		Add("x", constraint.Atomic{Op: constraint.Lt, K: 3})
	ok, err := constraint.Satisfiable(s)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSatisfiableContradiction(t *testing.T) {
	s := constraint.NewSet().
		Add("x", constraint.Atomic{Op: constraint.Ge, K: 5}).
		Add("x", constraint.Atomic{Op: constraint.Le, K: 2})
	ok, err := constraint.Satisfiable(s)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSatisfiableDegenerateStrictEqual(t *testing.T) {
	s := constraint.NewSet().
		Add("x", constraint.Atomic{Op: constraint.Ge, K: 3}).
		Add("x", constraint.Atomic{Op: constraint.Lt, K: 3})
	ok, err := constraint.Satisfiable(s)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSatisfiableRejectsNeq(t *testing.T) {
	s := constraint.NewSet().Add("x", constraint.Atomic{Op: constraint.Neq, K: 1})
	_, err := constraint.Satisfiable(s)
	require.Error(t, err)
	require.True(t, errors.Is(err, constraint.ErrNeqRejected))
}

func TestSatisfiableRejectsNegativeBound(t *testing.T) {
	s := constraint.NewSet().Add("x", constraint.Atomic{Op: constraint.Ge, K: -1})
	_, err := constraint.Satisfiable(s)
	require.Error(t, err)
	require.True(t, errors.Is(err, constraint.ErrNegativeBound))
}

func TestMergeConjoinsClocks(t *testing.T) {
	a := constraint.NewSet().Add("x", constraint.Atomic{Op: constraint.Ge, K: 1})
	b := constraint.NewSet().Add("x", constraint.Atomic{Op: constraint.Lt, K: 2})
	m := constraint.Merge(a, b)
	ok, err := constraint.Satisfiable(m)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, m["x"], 2)
}
