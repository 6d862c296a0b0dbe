// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package boxmin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedQuadratic(t *testing.T) {
	c := []float64{1, -2, 3}
	p := Problem{
		N: 3,
		Eval: func(x []float64) float64 {
			f := 0.0
			for i, v := range x {
				f += (v - c[i]) * (v - c[i])
			}
			return f
		},
		Grad: func(x, g []float64) {
			for i, v := range x {
				g[i] = 2 * (v - c[i])
			}
		},
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{10, 10, 10})
	require.True(t, r.OK)
	assert.Equal(t, Converged, r.Status)
	assert.InDeltaSlice(t, c, r.X, 1e-7)
	assert.InDelta(t, 0, r.F, 1e-12)
}

func TestActiveBound(t *testing.T) {
	// The unconstrained minimum 2 lies outside [0,1]:
	// the solution must stick to the upper bound.
	p := Problem{
		N:      1,
		Eval:   func(x []float64) float64 { return (x[0] - 2) * (x[0] - 2) },
		Bounds: []Bound{{Lower: 0, Upper: 1}},
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{0.5})
	require.True(t, r.OK)
	assert.InDelta(t, 1, r.X[0], 1e-9)
	assert.InDelta(t, 1, r.F, 1e-8)
}

func TestFiniteDifferenceGradient(t *testing.T) {
	// No analytic gradient: central differences drive the descent.
	p := Problem{
		N: 2,
		Eval: func(x []float64) float64 {
			return 3*(x[0]-1)*(x[0]-1) + 0.5*(x[1]+2)*(x[1]+2)
		},
		Stop: Termination{PGTolerance: 1e-7},
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{0, 0})
	require.True(t, r.OK)
	assert.InDeltaSlice(t, []float64{1, -2}, r.X, 1e-5)
	assert.Greater(t, r.NumEval, r.NumIter)
}

func TestHalfOpenBounds(t *testing.T) {
	// Lower bound only, NaN upper side stays unbounded.
	p := Problem{
		N:      1,
		Eval:   func(x []float64) float64 { return (x[0] + 3) * (x[0] + 3) },
		Grad:   func(x, g []float64) { g[0] = 2 * (x[0] + 3) },
		Bounds: []Bound{{Lower: -1, Upper: math.NaN()}},
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{5})
	require.True(t, r.OK)
	assert.InDelta(t, -1, r.X[0], 1e-9)
}

func TestProjectsInitialGuess(t *testing.T) {
	p := Problem{
		N:      1,
		Eval:   func(x []float64) float64 { return x[0] * x[0] },
		Grad:   func(x, g []float64) { g[0] = 2 * x[0] },
		Bounds: []Bound{{Lower: 1, Upper: 4}},
	}
	s, err := p.New()
	require.NoError(t, err)

	// Start far outside the box.
	r := s.Fit([]float64{-100})
	require.True(t, r.OK)
	assert.InDelta(t, 1, r.X[0], 1e-9)
}

func TestIdempotentAtOptimum(t *testing.T) {
	p := Problem{
		N:    2,
		Eval: func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
		Grad: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{0, 0})
	require.True(t, r.OK)
	assert.Equal(t, 0, r.NumIter)
}

func TestConvexQuartic(t *testing.T) {
	p := Problem{
		N: 2,
		Eval: func(x []float64) float64 {
			d := x[0] - 1
			return d*d*d*d + (x[1]+2)*(x[1]+2)
		},
		Grad: func(x, g []float64) {
			d := x[0] - 1
			g[0] = 4 * d * d * d
			g[1] = 2 * (x[1] + 2)
		},
		Stop: Termination{MaxIterations: 2000},
	}
	s, err := p.New()
	require.NoError(t, err)

	r := s.Fit([]float64{3, 3})
	require.True(t, r.OK)
	// The quartic valley is flat: gradient tolerance bounds the
	// location error only to its cube root.
	assert.InDelta(t, 1, r.X[0], 1e-2)
	assert.InDelta(t, -2, r.X[1], 1e-7)
}

func TestValidation(t *testing.T) {
	eval := func(x []float64) float64 { return x[0] }
	cases := []struct {
		name string
		p    Problem
	}{
		{"zero dimension", Problem{N: 0, Eval: eval}},
		{"missing objective", Problem{N: 1}},
		{"bound size", Problem{N: 2, Eval: eval, Bounds: []Bound{{}}}},
		{"empty bound", Problem{N: 1, Eval: eval, Bounds: []Bound{{Lower: 2, Upper: 1}}}},
		{"negative tolerance", Problem{N: 1, Eval: eval, Stop: Termination{PGTolerance: -1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.p.New()
			require.Error(t, err)
		})
	}
}
