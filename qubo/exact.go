// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qubo

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
)

// DefaultMaxDim bounds the exhaustive sweep.
// Every extra dimension doubles the running time.
const DefaultMaxDim = 30

// checkInterval is the number of sweep steps between context polls.
const checkInterval = 1 << 12

// Exact minimizes a QUBO by exhaustive enumeration.
//
// The sweep walks all 2ⁿ assignments in Gray-code order, so consecutive
// assignments differ in a single bit and the objective is updated
// incrementally in O(n) instead of re-evaluated in O(n²).
// Only a strict improvement replaces the incumbent, which makes the
// returned minimizer deterministic: among equal-valued optima the one
// visited first in the Gray sequence wins.
type Exact struct {
	// MaxDim limits the problem dimension, DefaultMaxDim when 0.
	MaxDim int
}

// Minimize finds the global minimizer of p.
// The enumeration polls ctx periodically and returns its error when cancelled.
func (e Exact) Minimize(ctx context.Context, p *Problem) (*Solution, error) {

	if err := p.check(); err != nil {
		return nil, err
	}

	limit := e.MaxDim
	if limit == 0 {
		limit = DefaultMaxDim
	}
	if p.N > limit {
		return nil, fmt.Errorf("problem dimension %d exceeds enumeration limit %d", p.N, limit)
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	h := p.dense()
	x := make([]float64, p.N)
	cur := p.Offset // 𝒒(𝟎)

	best := cur
	bestX := make([]float64, p.N)

	for k, total := uint64(1), uint64(1)<<p.N; k < total; k++ {
		if k%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// Gray code k ⊕ (k≫1) differs from its predecessor in bit tz(k).
		j := bits.TrailingZeros64(k)
		cur += flipDelta(p, h, x, j)
		x[j] = 1 - x[j]
		if cur < best {
			best = cur
			copy(bestX, x)
		}
	}

	return &Solution{X: bestX, Objective: best}, nil
}
