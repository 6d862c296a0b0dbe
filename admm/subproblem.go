// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// builder folds the augmented-Lagrangian terms of the current iterate
// into per-block subproblem instances. Every build is per-iteration:
// 𝐳, 𝐲 and 𝛒 move, so nothing is cached across iterations.
type builder struct {
	prob *Problem
	par  Params
}

// qubo assembles the binary subproblem
//
//	minimize 𝐱ᵀ𝐐𝐱 + 𝐚ᵀ𝐱 + 𝑐/2‖𝐆𝐱-𝐛‖² + 𝑐/2∑ᵢ(𝐀ᵢ𝐱-𝐜ᵢ)² + 𝛒/2‖𝐱-𝐳+𝐲/𝛒‖²
//
// where the inequality sum ranges over the rows active at the current
// relaxation 𝐳. The binary identity 𝐱ᵢ² = 𝐱ᵢ folds the consensus
// quadratic onto the diagonal.
func (b *builder) qubo(st *iterState) *QUBOInstance {

	p, n := b.prob, b.prob.N
	c, rho := b.par.FactorC, st.rho

	h := mat.NewSymDense(n, nil)
	lin := make([]float64, n)
	offset := zero

	if p.Q != nil {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				h.SetSym(i, j, p.Q.At(i, j))
			}
		}
	}
	if p.A != nil {
		copy(lin, p.A)
	}

	// 𝑐/2‖𝐆𝐱-𝐛‖² = 𝐱ᵀ(𝑐/2 𝐆ᵀ𝐆)𝐱 - 𝑐𝐛ᵀ𝐆𝐱 + 𝑐/2‖𝐛‖²
	if p.G != nil {
		rows, _ := p.G.Dims()
		for i := 0; i < rows; i++ {
			offset += penaltyRow(h, lin, p.G.RawRowView(i), p.B[i], c)
		}
	}

	// Inequality rows are folded only while active at 𝐳: the squared
	// hinge 𝚖𝚊𝚡(0,𝐀ᵢ𝐱-𝐜ᵢ)² is not quadratic in 𝐱, its active-set
	// linearization at the relaxation point is.
	if p.Ineq != nil {
		rows, _ := p.Ineq.Dims()
		for i := 0; i < rows; i++ {
			row := p.Ineq.RawRowView(i)
			if floats.Dot(row, st.z) > p.C[i] {
				offset += penaltyRow(h, lin, row, p.C[i], c)
			}
		}
	}

	// 𝛒/2‖𝐱-𝐳+𝐲/𝛒‖² with 𝐱ᵢ² = 𝐱ᵢ
	for i := 0; i < n; i++ {
		lin[i] += half*rho + st.y[i] - rho*st.z[i]
		d := st.z[i] - st.y[i]/rho
		offset += half * rho * d * d
	}

	return &QUBOInstance{N: n, H: h, Lin: lin, Offset: offset}
}

// penaltyRow adds 𝜶/2(𝐫ᵀ𝐱 - 𝑣)² to the quadratic form.
func penaltyRow(h *mat.SymDense, lin []float64, row []float64, v, alpha float64) (offset float64) {
	n := len(row)
	for i := 0; i < n; i++ {
		if row[i] == 0 {
			continue
		}
		for j := i; j < n; j++ {
			h.SetSym(i, j, h.At(i, j)+half*alpha*row[i]*row[j])
		}
		lin[i] -= alpha * v * row[i]
	}
	return half * alpha * v * v
}

// continuous assembles the three-block 𝐮 subproblem
//
//	minimize 𝛗(𝐮) + 𝛽/2 ∑ⱼ𝚖𝚊𝚡(0, ℓⱼ(𝐱,𝐮))²  over 𝐮 ∈ 𝑈
//
// at the just-updated binary iterate 𝐱.
func (b *builder) continuous(st *iterState) *ConvexInstance {

	p, beta := b.prob, b.par.Beta
	x := append([]float64(nil), st.x...)

	eval := func(u []float64) float64 {
		f := p.Phi.Func(u)
		for _, c := range p.Coupling {
			if v := c.F(x, u); v > zero {
				f += half * beta * v * v
			}
		}
		return f
	}

	var grad func(u, g []float64)
	if b.hasGradients() {
		gu := make([]float64, p.L)
		grad = func(u, g []float64) {
			p.Phi.Grad(u, g)
			for _, c := range p.Coupling {
				if v := c.F(x, u); v > zero {
					c.Grad(x, u, nil, gu)
					floats.AddScaled(g, beta*v, gu)
				}
			}
		}
	}

	return &ConvexInstance{
		N:      p.L,
		Eval:   eval,
		Grad:   grad,
		Bounds: p.Bounds,
		Init:   append([]float64(nil), st.u...),
		Tol:    b.subTol(),
	}
}

// merged assembles the two-block continuous subproblem over 𝐯 = (𝐳,𝐮)
//
//	minimize 𝛗(𝐮) + 𝛒/2‖𝐱-𝐳+𝐲/𝛒‖² + 𝛽/2 ∑ⱼ𝚖𝚊𝚡(0, ℓⱼ(𝐳,𝐮))²
//
// over 𝐳 ∈ [0,1]ⁿ and 𝐮 ∈ 𝑈, with the couplings evaluated at the
// relaxation 𝐳 in place of the binary iterate.
func (b *builder) merged(st *iterState) *ConvexInstance {

	p, beta := b.prob, b.par.Beta
	n, l := p.N, p.L
	rho := st.rho

	x := append([]float64(nil), st.x...)
	y := append([]float64(nil), st.y...)

	eval := func(v []float64) float64 {
		z, u := v[:n], v[n:]
		f := zero
		if l > 0 {
			f = p.Phi.Func(u)
		}
		for i := 0; i < n; i++ {
			d := x[i] - z[i] + y[i]/rho
			f += half * rho * d * d
		}
		for _, c := range p.Coupling {
			if w := c.F(z, u); w > zero {
				f += half * beta * w * w
			}
		}
		return f
	}

	var grad func(v, g []float64)
	if b.hasGradients() {
		gz := make([]float64, n)
		gu := make([]float64, l)
		grad = func(v, g []float64) {
			z, u := v[:n], v[n:]
			if l > 0 {
				p.Phi.Grad(u, g[n:])
			}
			for i := 0; i < n; i++ {
				g[i] = -rho * (x[i] - z[i] + y[i]/rho)
			}
			for _, c := range p.Coupling {
				if w := c.F(z, u); w > zero {
					c.Grad(z, u, gz, gu)
					floats.AddScaled(g[:n], beta*w, gz)
					if l > 0 {
						floats.AddScaled(g[n:], beta*w, gu)
					}
				}
			}
		}
	}

	bounds := make([]Bound, n+l)
	for i := 0; i < n; i++ {
		bounds[i] = Bound{Lower: 0, Upper: 1}
	}
	copy(bounds[n:], p.Bounds)

	init := make([]float64, n+l)
	copy(init, st.z)
	copy(init[n:], st.u)

	return &ConvexInstance{
		N:      n + l,
		Eval:   eval,
		Grad:   grad,
		Bounds: bounds,
		Init:   init,
		Tol:    b.subTol(),
	}
}

// hasGradients reports whether every piece of the continuous subproblem
// carries an analytic gradient.
func (b *builder) hasGradients() bool {
	if b.prob.L > 0 && b.prob.Phi.Grad == nil {
		return false
	}
	for _, c := range b.prob.Coupling {
		if c.Grad == nil {
			return false
		}
	}
	return true
}

// subTol asks the port for two orders more accuracy than the outer
// tolerance so subproblem noise never dominates the primal residual.
func (b *builder) subTol() float64 {
	return math.Max(1e-12, b.par.Tol*1e-2)
}
