// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// QUBOInstance is the binary subproblem handed to the QUBO port:
//
//	minimize 𝐱ᵀ𝐇𝐱 + 𝐡ᵀ𝐱 + 𝑐 over 𝐱 ∈ {0,1}ⁿ
//
// A fresh instance is built every iteration because the consensus point,
// the dual vector and the penalty parameter all move.
type QUBOInstance struct {
	N      int
	H      *mat.SymDense
	Lin    []float64
	Offset float64
}

// Value evaluates the instance objective at a binary assignment.
func (q *QUBOInstance) Value(x []float64) float64 {
	v := q.Offset
	for i, l := range q.Lin {
		v += l * x[i]
	}
	for i := 0; i < q.N; i++ {
		if x[i] == 0 {
			continue
		}
		for j := 0; j < q.N; j++ {
			v += q.H.At(i, j) * x[j]
		}
	}
	return v
}

// QUBOSolution is a binary assignment with its instance objective.
type QUBOSolution struct {
	X         []float64
	Objective float64
}

// QUBOSolver is the consumed binary-minimization capability.
// Implementations must accept arbitrary symmetric instances of the
// problem dimension; exactness is not assumed. A failed or cancelled
// solve returns an error wrapping ErrInfeasible or ErrSolverFailure.
type QUBOSolver interface {
	Solve(ctx context.Context, q *QUBOInstance) (*QUBOSolution, error)
}

// ConvexInstance is a continuous subproblem handed to the convex port:
//
//	minimize 𝒇(𝐯) over 𝒍 ≤ 𝐯 ≤ 𝒖
//
// with 𝒇 smooth and convex. Grad is nil when no analytic gradient is
// available, in which case the solver differentiates numerically.
type ConvexInstance struct {
	N      int
	Eval   func(v []float64) float64
	Grad   func(v, g []float64)
	Bounds []Bound
	Init   []float64 // warm start, the previous block iterate
	Tol    float64   // solution accuracy requested by the engine
}

// ConvexSolution is a continuous assignment with its instance objective.
type ConvexSolution struct {
	U         []float64
	Objective float64
}

// ConvexSolver is the consumed convex-minimization capability.
// A failed or cancelled solve returns an error wrapping ErrInfeasible
// or ErrSolverFailure.
type ConvexSolver interface {
	Solve(ctx context.Context, p *ConvexInstance) (*ConvexSolution, error)
}
