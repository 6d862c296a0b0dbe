// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// symTol is the relative tolerance of the 𝐐 = 𝐐ᵀ check.
const symTol = 1e-10

// Bound represents the bounds for a continuous variable.
// A NaN endpoint means the variable is unbounded on that side.
type Bound struct {
	Lower, Upper float64
}

// Objective is a smooth convex function with an optional analytic gradient.
// When Grad is nil the convex port falls back to finite differences.
type Objective struct {
	Func func(u []float64) float64
	Grad func(u, g []float64)
}

// Coupling is one jointly convex constraint ℓ(𝐱,𝐮) ≤ 0 linking the binary
// and continuous blocks. Grad fills the partials with respect to 𝐱 into gx
// and with respect to 𝐮 into gu; either slice may be nil when the caller
// only needs one side. A nil Grad falls back to finite differences.
type Coupling struct {
	F    func(x, u []float64) float64
	Grad func(x, u, gx, gu []float64)
}

// Problem specifies an immutable MBCO instance
//
//	minimize 𝐱ᵀ𝐐𝐱 + 𝐚ᵀ𝐱 + 𝛗(𝐮) subject to
//	  - 𝐆𝐱 = 𝐛
//	  - 𝐀𝐱 ≤ 𝐜
//	  - ℓⱼ(𝐱,𝐮) ≤ 0 (j = 1 ··· m)
//	  - 𝐱 ∈ {0,1}ⁿ, 𝐮 ∈ 𝑈
//
// The binary domain is structural: no explicit integrality constraint is
// listed, the QUBO port receives it through the instance encoding.
type Problem struct {
	N int // Binary dimension n > 0
	L int // Continuous dimension l ≥ 0, zero for pure binary problems

	Q *mat.Dense // Symmetric quadratic objective term, nil for zero
	A []float64  // Linear objective term 𝐚, nil for zero

	Phi Objective // Convex objective 𝛗(𝐮), required when L > 0

	G *mat.Dense // Equality constraints 𝐆𝐱 = 𝐛, nil for none
	B []float64

	Ineq *mat.Dense // Linear inequality constraints 𝐀𝐱 ≤ 𝐜, nil for none
	C    []float64

	Coupling []Coupling // Joint constraints ℓⱼ(𝐱,𝐮) ≤ 0

	Bounds []Bound // Box 𝑈, one entry per continuous variable
}

func (p *Problem) check() (err error) {

	n, l := p.N, p.L

	switch {
	case n <= 0:
		err = malformed("binary dimension must greater than 0")
	case l < 0:
		err = malformed("continuous dimension must not less than 0")
	case p.A != nil && len(p.A) != n:
		err = malformed("linear objective size %d must equal to n=%d", len(p.A), n)
	case l > 0 && p.Phi.Func == nil:
		err = malformed("continuous objective is required when l > 0")
	case l > 0 && len(p.Bounds) != l:
		err = malformed("bound size %d must equal to l=%d", len(p.Bounds), l)
	}
	if err != nil {
		return
	}

	if p.Q != nil {
		r, c := p.Q.Dims()
		if r != n || c != n {
			return malformed("quadratic objective is %d×%d, want %d×%d", r, c, n, n)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				qij, qji := p.Q.At(i, j), p.Q.At(j, i)
				scale := math.Max(one, math.Max(math.Abs(qij), math.Abs(qji)))
				if math.Abs(qij-qji) > symTol*scale {
					return malformed("quadratic objective is not symmetric at (%d,%d)", i, j)
				}
			}
		}
	}

	if err = checkLinear(p.G, p.B, n, "equality"); err != nil {
		return
	}
	if err = checkLinear(p.Ineq, p.C, n, "inequality"); err != nil {
		return
	}

	for k, b := range p.Bounds {
		if !math.IsNaN(b.Lower) && !math.IsNaN(b.Upper) && b.Lower > b.Upper {
			return malformed("empty bound at %d: [%g,%g]", k, b.Lower, b.Upper)
		}
	}

	for k, c := range p.Coupling {
		if c.F == nil {
			return malformed("coupling constraint %d has no function", k)
		}
	}

	return nil
}

func checkLinear(m *mat.Dense, rhs []float64, n int, kind string) error {
	switch {
	case m == nil && rhs == nil:
		return nil
	case m == nil || rhs == nil:
		return malformed("%s constraints need both matrix and vector", kind)
	}
	r, c := m.Dims()
	switch {
	case c != n:
		return malformed("%s matrix has %d columns, want %d", kind, c, n)
	case r != len(rhs):
		return malformed("%s vector size %d must equal to row count %d", kind, len(rhs), r)
	}
	return nil
}

// objective evaluates the original unpenalized 𝒒(𝐱) + 𝛗(𝐮).
func (p *Problem) objective(x, u []float64) float64 {
	v := zero
	if p.A != nil {
		for i, a := range p.A {
			v += a * x[i]
		}
	}
	if p.Q != nil {
		for i := 0; i < p.N; i++ {
			if x[i] == 0 {
				continue
			}
			for j := 0; j < p.N; j++ {
				v += p.Q.At(i, j) * x[j]
			}
		}
	}
	if p.L > 0 {
		v += p.Phi.Func(u)
	}
	return v
}

// violation is the 2-norm of all constraint violations at (𝐱,𝐮):
// equality residuals, clipped linear inequalities and clipped couplings.
func (p *Problem) violation(x, u []float64) float64 {
	sum := zero
	if p.G != nil {
		r, _ := p.G.Dims()
		for i := 0; i < r; i++ {
			v := -p.B[i]
			for j := 0; j < p.N; j++ {
				v += p.G.At(i, j) * x[j]
			}
			sum += v * v
		}
	}
	if p.Ineq != nil {
		r, _ := p.Ineq.Dims()
		for i := 0; i < r; i++ {
			v := -p.C[i]
			for j := 0; j < p.N; j++ {
				v += p.Ineq.At(i, j) * x[j]
			}
			if v > zero {
				sum += v * v
			}
		}
	}
	for _, c := range p.Coupling {
		if v := c.F(x, u); v > zero {
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}
