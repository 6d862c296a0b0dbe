// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// iterState is the mutable iterate of one solve call.
// It is owned exclusively by that call: concurrent solves on the same
// Optimizer each allocate their own state and share nothing mutable.
type iterState struct {
	x     []float64 // binary block iterate, 𝐱 ∈ {0,1}ⁿ
	z     []float64 // continuous relaxation copy of 𝐱, 𝐳 ∈ [0,1]ⁿ
	u     []float64 // continuous block iterate, 𝐮 ∈ 𝑈
	y     []float64 // dual multipliers of the consensus constraint
	zPrev []float64 // relaxation of the previous iteration
	rho   float64   // penalty parameter, adapted per iteration
	iter  int
}

// bestIterate snapshots the lowest-primal-residual iterate, the
// fallback result when the loop stops at the iteration limit.
// Strict improvement keeps the earlier of equal-residual iterates.
type bestIterate struct {
	primal float64
	fval   float64
	x, u   []float64
}

func (b *bestIterate) observe(st *iterState, primal, fval float64) {
	if primal < b.primal {
		b.primal, b.fval = primal, fval
		copy(b.x, st.x)
		copy(b.u, st.u)
	}
}

// engine drives the block-update sequence. The iteration is strictly
// sequential: each block consumes the previous block's output and
// iteration k+1 depends entirely on the final state of iteration k,
// so the only concurrency lives inside the solver ports.
type engine struct {
	prob   *Problem
	par    Params
	build  builder
	qubo   QUBOSolver
	convex ConvexSolver
	// step2 is the continuous pass chosen at construction:
	// a dedicated 𝐮 solve plus closed-form 𝐳 for three-block,
	// one merged (𝐳,𝐮) solve for two-block.
	step2 func(ctx context.Context, st *iterState) error
	log   *zerolog.Logger
}

func (e *engine) initState() *iterState {
	n, l := e.prob.N, e.prob.L
	st := &iterState{
		x:     make([]float64, n),
		z:     make([]float64, n),
		u:     make([]float64, l),
		y:     make([]float64, n),
		zPrev: make([]float64, n),
		rho:   e.par.RhoInitial,
	}
	copy(st.x, e.par.WarmX)
	copy(st.z, e.par.WarmZ)
	copy(st.u, e.par.WarmU)
	copy(st.y, e.par.WarmY)
	copy(st.zPrev, st.z)
	return st
}

func (e *engine) run(ctx context.Context) (*Result, error) {

	par := &e.par
	st := e.initState()
	hist := &history{}
	best := &bestIterate{
		primal: math.Inf(1),
		x:      make([]float64, e.prob.N),
		u:      make([]float64, e.prob.L),
	}

	state := phaseIterating
	for st.iter = 0; st.iter < par.MaxIter; st.iter++ {

		if err := ctx.Err(); err != nil {
			return nil, &BlockError{st.iter, BlockBinary, fmt.Errorf("%w: %v", ErrSolverFailure, err)}
		}

		// Degenerate adaptive updates must never drive 𝛒 out of range.
		st.rho = math.Min(math.Max(st.rho, par.RhoMin), par.RhoMax)

		// 1. Binary update through the QUBO port.
		sol, err := e.qubo.Solve(ctx, e.build.qubo(st))
		if err != nil {
			return nil, &BlockError{st.iter, BlockBinary, err}
		}
		if err = e.adoptBinary(st, sol); err != nil {
			return nil, &BlockError{st.iter, BlockBinary, err}
		}

		// 2./3. Continuous and consensus updates.
		if err = e.step2(ctx, st); err != nil {
			return nil, err
		}

		// 4. Dual ascent 𝐲 ← 𝐲 + 𝛒(𝐱 - 𝐳).
		for i := range st.y {
			st.y[i] += st.rho * (st.x[i] - st.z[i])
		}

		// 5. Residuals of the updated iterate.
		cons := zero
		for i := range st.x {
			d := st.x[i] - st.z[i]
			cons += d * d
		}
		vio := e.prob.violation(st.x, st.u)
		primal := math.Sqrt(cons + vio*vio)
		dual := zero
		for i := range st.z {
			d := st.z[i] - st.zPrev[i]
			dual += d * d
		}
		dual = st.rho * math.Sqrt(dual)

		fval := e.prob.objective(st.x, st.u)
		best.observe(st, primal, fval)

		rec := Record{Iteration: st.iter, Primal: primal, Dual: dual, Violation: vio, Rho: st.rho}
		hist.record(rec)
		e.log.Debug().
			Int("iteration", st.iter).
			Float64("primal", primal).
			Float64("dual", dual).
			Float64("rho", st.rho).
			Float64("objective", fval).
			Msg("admm iteration")

		if primal < par.Tol && (par.DualTol == zero || dual < par.DualTol) {
			state = phaseConverged
			break
		}

		// 6. Residual balancing of the penalty parameter.
		if par.AdaptRho {
			e.adaptRho(st, primal, dual)
		}
	}

	if state != phaseConverged {
		state = phaseMaxIter
	}
	return e.assemble(st, hist, best, state), nil
}

// adoptBinary validates the port solution and snaps it onto {0,1}ⁿ,
// heuristic solvers may return values that are only numerically binary.
func (e *engine) adoptBinary(st *iterState, sol *QUBOSolution) error {
	if sol == nil || len(sol.X) != e.prob.N {
		return fmt.Errorf("%w: binary solution dimension mismatch", ErrSolverFailure)
	}
	for i, v := range sol.X {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: binary solution contains NaN", ErrSolverFailure)
		}
		if v < half {
			st.x[i] = zero
		} else {
			st.x[i] = one
		}
	}
	return nil
}

// threeBlock solves 𝐮 through the convex port and the consensus
// subproblem 𝚖𝚒𝚗 𝛒/2‖𝐱-𝐳+𝐲/𝛒‖² over [0,1]ⁿ in its closed form
// 𝐳 = 𝚌𝚕𝚊𝚖𝚙(𝐱 + 𝐲/𝛒).
func (e *engine) threeBlock(ctx context.Context, st *iterState) error {
	if e.prob.L > 0 {
		sol, err := e.convex.Solve(ctx, e.build.continuous(st))
		if err != nil {
			return &BlockError{st.iter, BlockContinuous, err}
		}
		if len(sol.U) != e.prob.L {
			return &BlockError{st.iter, BlockContinuous,
				fmt.Errorf("%w: continuous solution dimension mismatch", ErrSolverFailure)}
		}
		copy(st.u, sol.U)
	}
	copy(st.zPrev, st.z)
	for i := range st.z {
		st.z[i] = math.Min(math.Max(st.x[i]+st.y[i]/st.rho, zero), one)
	}
	return nil
}

// twoBlock folds the 𝐮 update into the consensus solve: one convex
// subproblem over the stacked vector (𝐳,𝐮) per iteration.
func (e *engine) twoBlock(ctx context.Context, st *iterState) error {
	n := e.prob.N
	sol, err := e.convex.Solve(ctx, e.build.merged(st))
	if err != nil {
		return &BlockError{st.iter, BlockConsensus, err}
	}
	if len(sol.U) != n+e.prob.L {
		return &BlockError{st.iter, BlockConsensus,
			fmt.Errorf("%w: consensus solution dimension mismatch", ErrSolverFailure)}
	}
	copy(st.zPrev, st.z)
	copy(st.z, sol.U[:n])
	copy(st.u, sol.U[n:])
	return nil
}

// adaptRho scales 𝛒 when the residuals drift out of balance and
// rescales 𝐲 by the realized factor so the scaled dual 𝐲/𝛒 is
// preserved across the change.
func (e *engine) adaptRho(st *iterState, primal, dual float64) {
	par := &e.par
	rho := st.rho
	switch {
	case primal > par.MuRes*dual:
		rho = math.Min(rho*par.TauIncr, par.RhoMax)
	case dual > par.MuRes*primal:
		rho = math.Max(rho/par.TauDecr, par.RhoMin)
	}
	if rho != st.rho {
		floats.Scale(rho/st.rho, st.y)
		st.rho = rho
	}
}

func (e *engine) assemble(st *iterState, hist *history, best *bestIterate, state phase) *Result {

	res := &Result{
		Converged: state == phaseConverged,
		NumIter:   len(hist.recs),
		Rho:       st.rho,
		Residuals: append([]Record(nil), hist.recs...),
	}

	if res.Converged {
		res.X = append([]float64(nil), st.x...)
		res.U = append([]float64(nil), st.u...)
		res.Fval = e.prob.objective(st.x, st.u)
	} else {
		res.X = append([]float64(nil), best.x...)
		res.U = append([]float64(nil), best.u...)
		res.Fval = best.fval
	}

	e.log.Debug().
		Bool("converged", res.Converged).
		Int("iterations", res.NumIter).
		Float64("objective", res.Fval).
		Msg("admm finished")
	return res
}
