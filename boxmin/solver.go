// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package boxmin

import (
	"math"
)

// Line-search and spectral step constants.
//
// Raydan, Birgin & Martínez: "Nonmonotone spectral projected gradient
// methods on convex sets". SIAM J. Optim. 10(4), 2000.
const (
	sigma    = 1e-4  // Armijo sufficient-decrease factor
	stepMin  = 1e-12 // lower clamp of the Barzilai-Borwein step
	stepMax  = 1e+12 // upper clamp of the Barzilai-Borwein step
	maxTrial = 40    // halving attempts per line search
)

type spgCtx struct {
	x, g   []float64 // current location and gradient
	xt, gt []float64 // trial location and gradient
	d      []float64 // search direction along the projection arc
	f      float64   // current objective value
	alpha  float64   // spectral step length
	eval   int       // objective evaluation counter
}

// Fit runs the minimization from the initial guess x0.
// The guess is projected onto the box before the first evaluation,
// so any starting point is acceptable.
func (s *Solver) Fit(x0 []float64) *Result {

	if len(x0) != s.N {
		panic("initial x dimension not match spec")
	}

	n := s.N
	c := &spgCtx{
		x:  make([]float64, n),
		g:  make([]float64, n),
		xt: make([]float64, n),
		gt: make([]float64, n),
		d:  make([]float64, n),
	}
	for i, v := range x0 {
		c.x[i] = clamp(v, s.Bounds[i])
	}

	c.f = s.objective(c, c.x)
	s.gradient(c, c.x, c.g)

	// Initial step 1/‖𝜵𝒇‖∞ keeps the first trial inside a unit move.
	gInf := zero
	for _, g := range c.g {
		gInf = math.Max(gInf, math.Abs(g))
	}
	c.alpha = one
	if gInf > zero {
		c.alpha = math.Min(stepMax, math.Max(stepMin, one/gInf))
	}

	status, iter := s.mainLoop(c)
	return &Result{
		OK: status == Converged,
		X:  c.x, F: c.f, G: c.g,
		Status:  status,
		NumIter: iter,
		NumEval: c.eval,
	}
}

func (s *Solver) mainLoop(c *spgCtx) (Status, int) {

	n, stop := s.N, s.Stop
	for iter := 1; iter <= stop.MaxIterations; iter++ {

		if math.IsNaN(c.f) {
			return BadEvaluation, iter
		}

		// ‖ 𝐱 - 𝚌𝚕𝚊𝚖𝚙(𝐱 - 𝜵𝒇) ‖∞
		pg := zero
		for i, x := range c.x {
			pg = math.Max(pg, math.Abs(x-clamp(x-c.g[i], s.Bounds[i])))
		}
		if pg <= stop.PGTolerance {
			return Converged, iter - 1
		}

		// 𝐝 = 𝚌𝚕𝚊𝚖𝚙(𝐱 - 𝛂𝜵𝒇) - 𝐱
		gd := zero
		for i, x := range c.x {
			c.d[i] = clamp(x-c.alpha*c.g[i], s.Bounds[i]) - x
			gd += c.g[i] * c.d[i]
		}
		if gd >= zero {
			// The spectral step produced no descent: shrink and retry once
			// before giving up, the arc may be blocked by active bounds.
			c.alpha = math.Max(stepMin, c.alpha/two)
			if c.alpha <= stepMin {
				return SearchFailure, iter
			}
			continue
		}

		// Armijo backtracking along the feasible direction:
		// 𝒇(𝐱 + 𝛌𝐝) ≤ 𝒇(𝐱) + σ𝛌𝜵𝒇ᵀ𝐝
		lambda, ft := one, zero
		trial := 0
		for ; trial < maxTrial; trial++ {
			for i, x := range c.x {
				c.xt[i] = x + lambda*c.d[i]
			}
			if ft = s.objective(c, c.xt); ft <= c.f+sigma*lambda*gd {
				break
			}
			lambda /= two
		}
		if trial == maxTrial {
			return SearchFailure, iter
		}

		s.gradient(c, c.xt, c.gt)

		// Barzilai-Borwein: 𝛂 = 𝐬ᵀ𝐬 / 𝐬ᵀ𝐲 with 𝐬 = 𝐱ₖ₊₁-𝐱ₖ, 𝐲 = 𝜵𝒇ₖ₊₁-𝜵𝒇ₖ
		ss, sy := zero, zero
		for i := 0; i < n; i++ {
			si := c.xt[i] - c.x[i]
			ss += si * si
			sy += si * (c.gt[i] - c.g[i])
		}
		if sy > zero {
			c.alpha = math.Min(stepMax, math.Max(stepMin, ss/sy))
		} else {
			c.alpha = stepMax
		}

		c.f = ft
		copy(c.x, c.xt)
		copy(c.g, c.gt)
	}
	return ExceedMaxIter, stop.MaxIterations
}

func (s *Solver) objective(c *spgCtx, x []float64) float64 {
	c.eval++
	return s.Eval(x)
}

func (s *Solver) gradient(c *spgCtx, x, g []float64) {
	if s.Grad != nil {
		s.Grad(x, g)
		return
	}
	centralDiff(s, c, x, g)
}
