// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package boxmin minimizes smooth functions over box constraints:
//
//	minimize 𝒇(𝐱) subject to 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// using the spectral projected gradient method. A NaN bound endpoint
// means the variable is unbounded on that side. When 𝒇 is convex the
// method converges to the global box-constrained minimizer.
package boxmin

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	zero = 0.0
	one  = 1.0
	two  = 2.0
)

// Bound represents the bounds for an optimization variable.
type Bound struct {
	Lower, Upper float64
}

// Status reports how the optimization terminated.
type Status int

const (
	// Converged the projected gradient satisfied the tolerance.
	Converged Status = iota
	// ExceedMaxIter more than max iterations without convergence.
	ExceedMaxIter
	// SearchFailure the line search could not find a descent step.
	SearchFailure
	// BadEvaluation the objective produced NaN.
	BadEvaluation
)

// Termination specifies the stopping criteria for the optimization algorithm.
type Termination struct {
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
	// The iteration will stop when ‖ 𝐱 - 𝚌𝚕𝚊𝚖𝚙(𝐱 - 𝜵𝒇) ‖∞ ≤ 𝚙𝚐𝚝𝚘𝚕
	PGTolerance float64
}

// Problem specifies the problem for the box-constrained minimizer.
type Problem struct {
	N      int                       // The problem dimension
	Eval   func(x []float64) float64 // Objective function 𝒇(𝐱)
	Grad   func(x, g []float64)      // Gradient 𝜵𝒇(𝐱), finite differences when nil
	Bounds []Bound                   // Optional bounds, NaN endpoint means unbounded
	Stop   Termination               // Stop condition
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the optimization was converged.
	Status  Status    // Final task status after optimization.
	F       float64   // Final function value.
	X, G    []float64 // Final solution and gradient.
	NumIter int       // Number of iterations performed.
	NumEval int       // Number of objective evaluations.
}

// Solver holds a validated problem.
type Solver struct {
	spgSpec
}

type spgSpec struct {
	Problem
}

// New creates a new solver for given problem.
func (p *Problem) New() (solver *Solver, err error) {

	n, bnd, stop := p.N, p.Bounds, p.Stop

	if bnd == nil {
		bnd = make([]Bound, n)
		for i := range bnd {
			bnd[i].Lower = math.NaN()
			bnd[i].Upper = math.NaN()
		}
	}

	if stop.MaxIterations == 0 {
		stop.MaxIterations = 500
	}
	if stop.PGTolerance == 0 {
		stop.PGTolerance = 1e-9
	}

	switch {
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case p.Eval == nil:
		err = errors.New("objective function is required")
	case stop.MaxIterations < 0:
		err = errors.New("max iteration must greater than 0")
	case stop.PGTolerance <= zero:
		err = errors.New("projected gradient tolerance must greater than 0")
	case len(bnd) != n:
		err = errors.New("bound size must equal to n")
	}

	for k, b := range bnd {
		if !math.IsNaN(b.Lower) && !math.IsNaN(b.Upper) && b.Lower > b.Upper {
			err = fmt.Errorf("empty bound at %d: [%g,%g]", k, b.Lower, b.Upper)
			break
		}
	}

	if err != nil {
		return
	}

	solver = &Solver{spgSpec{Problem{
		N:      n,
		Eval:   p.Eval,
		Grad:   p.Grad,
		Bounds: slices.Clone(bnd),
		Stop:   stop,
	}}}
	return
}

// clamp projects v onto [l,u] treating NaN endpoints as unbounded.
func clamp(v float64, b Bound) float64 {
	if !math.IsNaN(b.Lower) && v < b.Lower {
		return b.Lower
	}
	if !math.IsNaN(b.Upper) && v > b.Upper {
		return b.Upper
	}
	return v
}
