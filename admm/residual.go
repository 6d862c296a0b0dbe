// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

// Record is one row of the residual history.
type Record struct {
	Iteration int
	// Primal is the consensus-plus-violation residual
	// √(‖𝐱-𝐳‖² + 𝑣𝑖𝑜²) of the iterate.
	Primal float64
	// Dual is the consensus change 𝛒‖𝐳ₖ-𝐳ₖ₋₁‖ across iterations.
	Dual float64
	// Violation is the constraint part of the primal residual alone.
	Violation float64
	// Rho is the penalty parameter used by the iteration.
	Rho float64
}

// history accumulates one Record per iteration.
// It is owned by a single solve call and copied into the Result,
// the engine never mutates it after the loop terminates.
type history struct {
	recs []Record
}

func (h *history) record(r Record) {
	h.recs = append(h.recs, r)
}
