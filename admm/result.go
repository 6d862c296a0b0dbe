// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

// Result is the immutable outcome of one solve call.
//
// When the loop stops at MaxIter without meeting the tolerance the
// result is still returned: Converged is false and the iterate is the
// lowest-primal-residual one observed, not necessarily the last.
type Result struct {
	// X is the final binary assignment, every element 0 or 1.
	X []float64
	// U is the final continuous assignment, empty for pure binary problems.
	U []float64
	// Fval is the original unpenalized objective 𝒒(𝐱) + 𝛗(𝐮)
	// at the returned iterate.
	Fval float64
	// Converged reports whether the residual tolerance was met.
	Converged bool
	// NumIter is the number of iterations performed.
	NumIter int
	// Rho is the final penalty parameter.
	Rho float64
	// Residuals is the full per-iteration residual history.
	Residuals []Record
}

// PrimalResiduals returns the primal residual sequence for diagnostics.
func (r *Result) PrimalResiduals() []float64 {
	out := make([]float64, len(r.Residuals))
	for i, rec := range r.Residuals {
		out[i] = rec.Primal
	}
	return out
}
