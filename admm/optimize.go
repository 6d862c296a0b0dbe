// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Optimizer iterates the decomposition of one validated problem.
//
// The optimizer itself is stateless between calls: every Solve
// allocates a fresh iterate, so one optimizer may serve concurrent
// solves as long as the configured solver ports are safe to share.
//
// # Reference
//
// Gambella, Simonetto: "Multiblock ADMM heuristics for mixed-binary
// optimization on classical and quantum computers".
// IEEE Trans. on Quantum Engineering, 2020.
type Optimizer struct {
	prob   Problem
	par    Params
	qubo   QUBOSolver
	convex ConvexSolver
	log    zerolog.Logger
}

// New validates the problem and configuration and binds the solver
// ports. Structural violations surface as ErrMalformedProblem before
// the first iteration and are never retried.
//
// The convex port may be nil only for pure binary problems solved with
// the three-block splitting, the only variant that never builds a
// continuous subproblem for them.
func (p *Problem) New(par Params, qs QUBOSolver, cs ConvexSolver) (*Optimizer, error) {

	if err := p.check(); err != nil {
		return nil, err
	}
	if err := par.check(p); err != nil {
		return nil, err
	}

	switch {
	case qs == nil:
		return nil, errors.New("admm: QUBO solver port is required")
	case cs == nil && !(p.L == 0 && par.ThreeBlock):
		return nil, errors.New("admm: convex solver port is required")
	}

	o := &Optimizer{
		prob:   *p,
		par:    par.withDefaults(),
		qubo:   qs,
		convex: cs,
	}
	if par.Log != nil {
		o.log = *par.Log
	} else {
		o.log = zerolog.Nop()
	}
	return o, nil
}

// Solve runs the decomposition loop to a consensus fixed point.
//
// Reaching the iteration limit is not an error: the result is flagged
// as non-converged and carries the best observed iterate. A failed or
// cancelled port call aborts with a *BlockError naming the block and
// iteration index.
func (o *Optimizer) Solve(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	e := &engine{
		prob:   &o.prob,
		par:    o.par,
		build:  builder{prob: &o.prob, par: o.par},
		qubo:   o.qubo,
		convex: o.convex,
		log:    &o.log,
	}
	if o.par.ThreeBlock {
		e.step2 = e.threeBlock
	} else {
		e.step2 = e.twoBlock
	}
	return e.run(ctx)
}
