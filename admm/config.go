// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"math"

	"github.com/rs/zerolog"
)

// Params is the immutable engine configuration of one Optimizer.
type Params struct {
	// RhoInitial is the starting penalty parameter 𝛒 > 0 of the
	// consensus augmented Lagrangian term.
	RhoInitial float64
	// Beta ≥ 0 weights the quadratic penalty of the coupling
	// constraints ℓ(𝐱,𝐮) ≤ 0 inside the continuous subproblem.
	Beta float64
	// FactorC ≥ 0 weights the quadratic penalty of the binary
	// equality and inequality constraints inside the QUBO.
	FactorC float64
	// MaxIter bounds the outer iteration count.
	MaxIter int
	// Tol is the primal residual threshold for convergence.
	Tol float64
	// DualTol additionally requires the dual residual below the
	// threshold when positive; zero disables the dual check.
	DualTol float64
	// ThreeBlock selects the three-block splitting with a dedicated
	// 𝐮 update. The two-block variant folds 𝐮 into the consensus
	// solve: one continuous solve per iteration instead of two,
	// cheaper but without the three-block convergence guarantee.
	ThreeBlock bool

	// AdaptRho enables residual balancing of 𝛒: the penalty is scaled
	// by TauIncr when the primal residual exceeds MuRes times the dual
	// residual, and divided by TauDecr in the opposite imbalance.
	// The dual vector is rescaled by the same factor so the scaled
	// multiplier 𝐲/𝛒 is preserved. 𝛒 stays within [RhoMin, RhoMax].
	AdaptRho         bool
	TauIncr, TauDecr float64
	MuRes            float64
	RhoMin, RhoMax   float64

	// Warm starts. Nil vectors start at zero.
	WarmX, WarmZ, WarmU, WarmY []float64

	// Log receives a debug record per iteration, nil for no output.
	Log *zerolog.Logger
}

// DefaultParams returns the documented default configuration:
// three-block splitting, 𝛒 = 1000, 𝛽 = 1000, 𝑐 = 10⁵ and a primal
// tolerance of 10⁻⁴ within 50 iterations.
func DefaultParams() Params {
	return Params{
		RhoInitial: 1000,
		Beta:       1000,
		FactorC:    1e5,
		MaxIter:    50,
		Tol:        1e-4,
		ThreeBlock: true,
		TauIncr:    two,
		TauDecr:    two,
		MuRes:      ten,
		RhoMin:     1e-6,
		RhoMax:     1e10,
	}
}

func (par *Params) withDefaults() Params {
	p := *par
	if p.TauIncr == 0 {
		p.TauIncr = two
	}
	if p.TauDecr == 0 {
		p.TauDecr = two
	}
	if p.MuRes == 0 {
		p.MuRes = ten
	}
	if p.RhoMin == 0 {
		p.RhoMin = 1e-6
	}
	if p.RhoMax == 0 {
		p.RhoMax = 1e10
	}
	return p
}

func (par *Params) check(prob *Problem) (err error) {
	p := par.withDefaults()
	switch {
	case !(p.RhoInitial > zero):
		err = malformed("initial rho must greater than 0")
	case p.Beta < zero || math.IsNaN(p.Beta):
		err = malformed("beta must not less than 0")
	case p.FactorC < zero || math.IsNaN(p.FactorC):
		err = malformed("factor c must not less than 0")
	case p.MaxIter <= 0:
		err = malformed("max iteration must greater than 0")
	case !(p.Tol > zero):
		err = malformed("tolerance must greater than 0")
	case p.DualTol < zero || math.IsNaN(p.DualTol):
		err = malformed("dual tolerance must not less than 0")
	case p.TauIncr <= one || p.TauDecr <= one:
		err = malformed("rho scale factors must greater than 1")
	case p.MuRes <= one:
		err = malformed("residual ratio threshold must greater than 1")
	case !(p.RhoMin > zero) || p.RhoMin > p.RhoMax:
		err = malformed("rho bounds must satisfy 0 < min ≤ max")
	case p.RhoInitial < p.RhoMin || p.RhoInitial > p.RhoMax:
		err = malformed("initial rho outside [%g,%g]", p.RhoMin, p.RhoMax)
	}
	if err != nil {
		return
	}

	warm := []struct {
		name string
		v    []float64
		want int
	}{
		{"x", p.WarmX, prob.N},
		{"z", p.WarmZ, prob.N},
		{"y", p.WarmY, prob.N},
		{"u", p.WarmU, prob.L},
	}
	for _, w := range warm {
		if w.v != nil && len(w.v) != w.want {
			return malformed("warm start %s size %d must equal to %d", w.name, len(w.v), w.want)
		}
	}
	return nil
}
