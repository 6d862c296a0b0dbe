// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package boxmin

import (
	"math"
)

var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

// centralDiff estimates 𝜵𝒇(𝐱) by central differences with step
// h = ∛𝛆 × 𝚖𝚊𝚡(1,|𝐱ᵢ|), falling back to a one-sided difference when a
// bound blocks one side of the stencil. The stencil never evaluates
// outside the box.
func centralDiff(s *Solver, c *spgCtx, x, g []float64) {
	for i, xi := range x {
		step := cubeEps * math.Max(one, math.Abs(xi))
		b := s.Bounds[i]

		up, lo := xi+step, xi-step
		hasUp := math.IsNaN(b.Upper) || up <= b.Upper
		hasLo := math.IsNaN(b.Lower) || lo >= b.Lower

		switch {
		case hasUp && hasLo:
			x[i] = up
			fu := s.objective(c, x)
			x[i] = lo
			fl := s.objective(c, x)
			g[i] = (fu - fl) / (up - lo)
		case hasUp:
			fx := s.objective(c, x)
			x[i] = up
			fu := s.objective(c, x)
			g[i] = (fu - fx) / step
		case hasLo:
			fx := s.objective(c, x)
			x[i] = lo
			fl := s.objective(c, x)
			g[i] = (fx - fl) / step
		default:
			// Degenerate box with width < 2h: the variable is pinned.
			g[i] = zero
		}
		x[i] = xi
	}
}
