// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qubo

import (
	"context"
	"errors"
	"math"
	"math/rand"
)

// Anneal minimizes a QUBO by single-flip simulated annealing.
//
// Each sweep proposes one Metropolis flip per variable while the inverse
// temperature 𝛽 rises geometrically from BetaInit to BetaFinal.
// After the schedule a greedy 1-flip descent drains the final state into
// its nearest local minimum, so separable instances are solved exactly
// regardless of the random walk.
//
// The solver is a heuristic: for coupled instances the result is a good,
// not necessarily optimal, assignment.
type Anneal struct {
	// Sweeps per restart, 1000 when 0.
	Sweeps int
	// Geometric inverse-temperature schedule, 0.1 → 10 when 0.
	BetaInit, BetaFinal float64
	// Independent restarts keeping the best final state, 1 when 0.
	Restarts int
	// Seed of the random walk, 1 when 0 to keep runs reproducible.
	Seed int64
}

// Minimize runs the annealing schedule on p.
func (a Anneal) Minimize(ctx context.Context, p *Problem) (*Solution, error) {

	if err := p.check(); err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	sweeps, restarts := a.Sweeps, a.Restarts
	if sweeps <= 0 {
		sweeps = 1000
	}
	if restarts <= 0 {
		restarts = 1
	}
	bi, bf := a.BetaInit, a.BetaFinal
	if bi <= 0 {
		bi = 0.1
	}
	if bf <= 0 {
		bf = 10
	}
	seed := a.Seed
	if seed == 0 {
		seed = 1
	}

	switch {
	case bf < bi:
		return nil, errors.New("final beta must not less than initial beta")
	}

	rng := rand.New(rand.NewSource(seed))
	h := p.dense()

	var best *Solution
	for r := 0; r < restarts; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		x := make([]float64, p.N)
		for i := range x {
			x[i] = float64(rng.Intn(2))
		}
		cur := p.Value(x)

		// 𝛽ₖ = 𝛽₀(𝛽₁/𝛽₀)^(k/K)
		ratio := math.Pow(bf/bi, 1/float64(sweeps))
		beta := bi
		for k := 0; k < sweeps; k++ {
			for flip := 0; flip < p.N; flip++ {
				j := rng.Intn(p.N)
				delta := flipDelta(p, h, x, j)
				if delta <= 0 || rng.Float64() < math.Exp(-beta*delta) {
					cur += delta
					x[j] = 1 - x[j]
				}
			}
			beta *= ratio
		}

		// Greedy drain: repeat improving flips until none remains.
		for improved := true; improved; {
			improved = false
			for j := 0; j < p.N; j++ {
				if delta := flipDelta(p, h, x, j); delta < 0 {
					cur += delta
					x[j] = 1 - x[j]
					improved = true
				}
			}
		}

		if best == nil || cur < best.Objective {
			best = &Solution{X: x, Objective: cur}
		}
	}

	return best, nil
}
