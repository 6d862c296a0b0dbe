// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qubo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// enumerate finds the minimum by direct evaluation of all assignments.
func enumerate(p *Problem) *Solution {
	n := p.N
	best := &Solution{X: make([]float64, n)}
	best.Objective = p.Value(best.X)
	x := make([]float64, n)
	for k := uint64(1); k < uint64(1)<<n; k++ {
		for j := 0; j < n; j++ {
			x[j] = float64((k >> j) & 1)
		}
		if v := p.Value(x); v < best.Objective {
			best.Objective = v
			copy(best.X, x)
		}
	}
	return best
}

func TestExactSmall(t *testing.T) {
	h := mat.NewSymDense(3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	p := &Problem{N: 3, H: h, Lin: []float64{1, 1, -3}, Offset: 0.5}

	sol, err := Exact{}.Minimize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, sol.X)
	assert.InDelta(t, -2.5, sol.Objective, 1e-12)
	assert.InDelta(t, p.Value(sol.X), sol.Objective, 1e-12)
}

func TestExactMatchesDirectSweep(t *testing.T) {
	h := mat.NewSymDense(5, []float64{
		2, -1, 0, 3, 0,
		-1, 1, -2, 0, 1,
		0, -2, -1, 1, 0,
		3, 0, 1, 2, -1,
		0, 1, 0, -1, 1,
	})
	p := &Problem{N: 5, H: h, Lin: []float64{-1, 2, -3, 0, 1}, Offset: -2}

	sol, err := Exact{}.Minimize(context.Background(), p)
	require.NoError(t, err)

	want := enumerate(p)
	assert.InDelta(t, want.Objective, sol.Objective, 1e-9)
	assert.InDelta(t, p.Value(sol.X), sol.Objective, 1e-9)
}

func TestExactTieBreak(t *testing.T) {
	// (1,0,·) and (0,1,·) share the optimum: the Gray sweep visits
	// (1,0,0) first and strict improvement must keep it.
	h := mat.NewSymDense(3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	p := &Problem{N: 3, H: h, Lin: []float64{-1, -1, 0}}

	sol, err := Exact{}.Minimize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, sol.X)
	assert.InDelta(t, -1, sol.Objective, 1e-12)
}

func TestExactLinearOnly(t *testing.T) {
	p := &Problem{N: 4, Lin: []float64{1, -2, 3, -4}, Offset: 1}
	sol, err := Exact{}.Minimize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, sol.X)
	assert.InDelta(t, -5, sol.Objective, 1e-12)
}

func TestExactDimensionLimit(t *testing.T) {
	p := &Problem{N: 5, Lin: make([]float64, 5)}
	p.Lin[0] = 1
	_, err := Exact{MaxDim: 4}.Minimize(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumeration limit")
}

func TestExactCancellation(t *testing.T) {
	lin := make([]float64, 20)
	for i := range lin {
		lin[i] = float64(i%3) - 1
	}
	p := &Problem{N: 20, Lin: lin}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Exact{}.Minimize(ctx, p)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProblemValidation(t *testing.T) {
	cases := []struct {
		name string
		p    Problem
	}{
		{"zero dimension", Problem{N: 0, Lin: []float64{1}}},
		{"linear size", Problem{N: 2, Lin: []float64{1}}},
		{"no terms", Problem{N: 2}},
		{"quadratic size", Problem{N: 2, H: mat.NewSymDense(3, nil)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Exact{}.Minimize(context.Background(), &c.p)
			require.Error(t, err)
		})
	}
}

func TestAnnealSeparable(t *testing.T) {
	// Separable instance: the final greedy drain solves it exactly
	// no matter where the random walk ends.
	p := &Problem{N: 4, Lin: []float64{1, -2, 3, -4}}
	sol, err := Anneal{}.Minimize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, sol.X)
	assert.InDelta(t, -6, sol.Objective, 1e-12)
}

func TestAnnealConsistency(t *testing.T) {
	h := mat.NewSymDense(4, []float64{
		1, -2, 0, 1,
		-2, 0, 1, 0,
		0, 1, -1, -1,
		1, 0, -1, 2,
	})
	p := &Problem{N: 4, H: h, Lin: []float64{-1, 0, 1, -2}, Offset: 3}

	sol, err := Anneal{Sweeps: 200, Restarts: 3, Seed: 7}.Minimize(context.Background(), p)
	require.NoError(t, err)
	for _, v := range sol.X {
		assert.True(t, v == 0 || v == 1)
	}
	// The reported objective must match a re-evaluation of the assignment.
	assert.InDelta(t, p.Value(sol.X), sol.Objective, 1e-9)
	// The greedy drain guarantees a 1-flip local minimum.
	hd := p.dense()
	for j := 0; j < p.N; j++ {
		assert.GreaterOrEqual(t, flipDelta(p, hd, sol.X, j), 0.0)
	}
}

func TestAnnealDeterministicSeed(t *testing.T) {
	h := mat.NewSymDense(3, []float64{0, 2, -1, 2, 0, 0, -1, 0, 1})
	p := &Problem{N: 3, H: h, Lin: []float64{1, -1, 0}}

	a := Anneal{Sweeps: 50, Seed: 42}
	s1, err := a.Minimize(context.Background(), p)
	require.NoError(t, err)
	s2, err := a.Minimize(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, s1.X, s2.X)
	assert.Equal(t, s1.Objective, s2.Objective)
}
