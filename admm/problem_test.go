// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func validProblem() *Problem {
	return &Problem{
		N: 2,
		L: 1,
		A: []float64{1, 1},
		Phi: Objective{
			Func: func(u []float64) float64 { return u[0] * u[0] },
		},
		G:      mat.NewDense(1, 2, []float64{1, 1}),
		B:      []float64{1},
		Bounds: []Bound{{Lower: 0, Upper: 1}},
	}
}

func TestMalformedProblem(t *testing.T) {

	cases := []struct {
		name   string
		mutate func(p *Problem)
	}{
		{"zero binary dimension", func(p *Problem) { p.N = 0 }},
		{"negative continuous dimension", func(p *Problem) { p.L = -1 }},
		{"linear objective size", func(p *Problem) { p.A = []float64{1} }},
		{"asymmetric quadratic", func(p *Problem) {
			p.Q = mat.NewDense(2, 2, []float64{0, 1, 2, 0})
		}},
		{"quadratic dimensions", func(p *Problem) {
			p.Q = mat.NewDense(3, 3, nil)
		}},
		{"equality vector size", func(p *Problem) { p.B = []float64{1, 2} }},
		{"equality matrix columns", func(p *Problem) {
			p.G = mat.NewDense(1, 3, []float64{1, 1, 1})
		}},
		{"equality vector missing", func(p *Problem) { p.B = nil }},
		{"inequality mismatch", func(p *Problem) {
			p.Ineq = mat.NewDense(1, 2, []float64{1, 0})
			p.C = []float64{1, 2}
		}},
		{"missing continuous objective", func(p *Problem) { p.Phi = Objective{} }},
		{"empty box", func(p *Problem) { p.Bounds[0] = Bound{Lower: 2, Upper: 1} }},
		{"bound size", func(p *Problem) { p.Bounds = nil }},
		{"nil coupling", func(p *Problem) { p.Coupling = []Coupling{{}} }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := validProblem()
			c.mutate(p)
			_, err := p.New(DefaultParams(), ExactQUBO{}, SPGConvex{})
			require.ErrorIs(t, err, ErrMalformedProblem)
		})
	}
}

func TestSymmetryTolerance(t *testing.T) {
	// Round-off asymmetry well below the tolerance must pass.
	p := validProblem()
	p.Q = mat.NewDense(2, 2, []float64{1, 0.5, 0.5 + 1e-14, 2})
	_, err := p.New(DefaultParams(), ExactQUBO{}, SPGConvex{})
	require.NoError(t, err)
}

func TestMalformedParams(t *testing.T) {

	cases := []struct {
		name   string
		mutate func(par *Params)
	}{
		{"zero rho", func(par *Params) { par.RhoInitial = 0 }},
		{"negative beta", func(par *Params) { par.Beta = -1 }},
		{"negative factor c", func(par *Params) { par.FactorC = -1 }},
		{"zero max iteration", func(par *Params) { par.MaxIter = 0 }},
		{"zero tolerance", func(par *Params) { par.Tol = 0 }},
		{"bad scale factor", func(par *Params) { par.TauIncr = 0.5 }},
		{"bad residual ratio", func(par *Params) { par.MuRes = 1 }},
		{"inverted rho bounds", func(par *Params) { par.RhoMin, par.RhoMax = 10, 1 }},
		{"rho outside bounds", func(par *Params) { par.RhoMin, par.RhoMax = 1, 10; par.RhoInitial = 100 }},
		{"warm start size", func(par *Params) { par.WarmX = []float64{1} }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := validProblem()
			par := DefaultParams()
			c.mutate(&par)
			_, err := p.New(par, ExactQUBO{}, SPGConvex{})
			require.ErrorIs(t, err, ErrMalformedProblem)
		})
	}
}

func TestMissingPorts(t *testing.T) {
	p := validProblem()

	_, err := p.New(DefaultParams(), nil, SPGConvex{})
	require.Error(t, err)

	_, err = p.New(DefaultParams(), ExactQUBO{}, nil)
	require.Error(t, err)

	// Pure binary three-block never builds a continuous subproblem,
	// the convex port may stay unbound.
	pure := &Problem{N: 2, A: []float64{1, 1}}
	_, err = pure.New(DefaultParams(), ExactQUBO{}, nil)
	require.NoError(t, err)

	// The two-block variant still solves the consensus step through it.
	par := DefaultParams()
	par.ThreeBlock = false
	_, err = pure.New(par, ExactQUBO{}, nil)
	require.Error(t, err)
}

func TestViolationNorm(t *testing.T) {
	p := &Problem{
		N:    2,
		L:    1,
		A:    []float64{1, 1},
		Phi:  Objective{Func: func(u []float64) float64 { return 0 }},
		G:    mat.NewDense(1, 2, []float64{1, 1}),
		B:    []float64{1},
		Ineq: mat.NewDense(1, 2, []float64{1, 0}),
		C:    []float64{0},
		Coupling: []Coupling{{
			F: func(x, u []float64) float64 { return 1 - u[0] },
		}},
		Bounds: []Bound{{Lower: 0, Upper: 2}},
	}
	require.NoError(t, p.check())

	// x = (1,1): equality off by 1, inequality off by 1, coupling off by 1.
	v := p.violation([]float64{1, 1}, []float64{0})
	assert.InDelta(t, 1.7320508075688772, v, 1e-12)

	// Feasible point: zero violation.
	v = p.violation([]float64{0, 1}, []float64{1.5})
	assert.Zero(t, v)
}
