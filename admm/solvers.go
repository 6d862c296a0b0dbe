// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"context"
	"fmt"

	"github.com/curioloop/mbopt/boxmin"
	"github.com/curioloop/mbopt/qubo"
)

// ExactQUBO satisfies the QUBO port with Gray-code enumeration.
// The zero value enumerates up to qubo.DefaultMaxDim variables.
type ExactQUBO struct {
	MaxDim int
}

func (s ExactQUBO) Solve(ctx context.Context, q *QUBOInstance) (*QUBOSolution, error) {
	p := qubo.Problem{N: q.N, H: q.H, Lin: q.Lin, Offset: q.Offset}
	sol, err := qubo.Exact{MaxDim: s.MaxDim}.Minimize(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	return &QUBOSolution{X: sol.X, Objective: sol.Objective}, nil
}

// AnnealQUBO satisfies the QUBO port with simulated annealing,
// a heuristic stand-in for sampled binary minimizers.
type AnnealQUBO struct {
	Anneal qubo.Anneal
}

func (s AnnealQUBO) Solve(ctx context.Context, q *QUBOInstance) (*QUBOSolution, error) {
	p := qubo.Problem{N: q.N, H: q.H, Lin: q.Lin, Offset: q.Offset}
	sol, err := s.Anneal.Minimize(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	return &QUBOSolution{X: sol.X, Objective: sol.Objective}, nil
}

// SPGConvex satisfies the convex port with the spectral projected
// gradient method. The subproblems the engine emits are smooth convex
// functions over boxes, exactly the class boxmin minimizes.
//
// The boxmin iteration has no blocking points, so cancellation is
// honored at call granularity: an expired context fails the solve
// before any work starts.
type SPGConvex struct {
	// MaxIterations per subproblem, boxmin's default when 0.
	MaxIterations int
}

func (s SPGConvex) Solve(ctx context.Context, ci *ConvexInstance) (*ConvexSolution, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}

	bounds := make([]boxmin.Bound, ci.N)
	for i, b := range ci.Bounds {
		bounds[i] = boxmin.Bound{Lower: b.Lower, Upper: b.Upper}
	}

	p := boxmin.Problem{
		N:      ci.N,
		Eval:   ci.Eval,
		Grad:   ci.Grad,
		Bounds: bounds,
		Stop: boxmin.Termination{
			MaxIterations: s.MaxIterations,
			PGTolerance:   ci.Tol,
		},
	}
	slv, err := p.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}

	init := ci.Init
	if init == nil {
		init = make([]float64, ci.N)
	}
	res := slv.Fit(init)
	if res.Status == boxmin.SearchFailure || res.Status == boxmin.BadEvaluation {
		return nil, fmt.Errorf("%w: projected gradient status %d", ErrSolverFailure, res.Status)
	}
	return &ConvexSolution{U: res.X, Objective: res.F}, nil
}
