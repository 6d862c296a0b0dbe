// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qubo provides solvers for Quadratic Unconstrained Binary Optimization:
//
//	minimize 𝒒(𝐱) = 𝐱ᵀ𝐇𝐱 + 𝐡ᵀ𝐱 + 𝑐  over  𝐱 ∈ {0,1}ⁿ
//
// where 𝐇 is a symmetric n×n matrix, 𝐡 an n-vector and 𝑐 a constant offset.
package qubo

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Problem specifies a QUBO instance.
type Problem struct {
	N      int           // The problem dimension
	H      *mat.SymDense // Quadratic coefficients 𝐇 (nil for pure linear problems)
	Lin    []float64     // Linear coefficients 𝐡 (nil for zero)
	Offset float64       // Constant offset 𝑐
}

// Solution holds a binary assignment and its objective value.
type Solution struct {
	X         []float64 // Binary assignment, every element is 0 or 1
	Objective float64   // 𝒒(𝐱) including the offset
}

func (p *Problem) check() (err error) {
	n := p.N
	switch {
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case p.H != nil && p.H.SymmetricDim() != n:
		err = errors.New("quadratic term dimension must equal to n")
	case p.Lin != nil && len(p.Lin) != n:
		err = errors.New("linear term size must equal to n")
	case p.H == nil && p.Lin == nil:
		err = errors.New("problem must have a quadratic or linear term")
	}
	return
}

// Value evaluates 𝒒(𝐱) = 𝐱ᵀ𝐇𝐱 + 𝐡ᵀ𝐱 + 𝑐 at the given assignment.
func (p *Problem) Value(x []float64) float64 {
	v := p.Offset
	if p.Lin != nil {
		for i, l := range p.Lin {
			v += l * x[i]
		}
	}
	if p.H != nil {
		for i := 0; i < p.N; i++ {
			if x[i] == 0 {
				continue
			}
			for j := 0; j < p.N; j++ {
				v += p.H.At(i, j) * x[j]
			}
		}
	}
	return v
}

// dense copies 𝐇 into row-major slices for the flip sweeps.
func (p *Problem) dense() [][]float64 {
	rows := make([][]float64, p.N)
	buf := make([]float64, p.N*p.N)
	for i := range rows {
		rows[i] = buf[i*p.N : (i+1)*p.N]
		if p.H != nil {
			for j := 0; j < p.N; j++ {
				rows[i][j] = p.H.At(i, j)
			}
		}
	}
	return rows
}

func (p *Problem) linAt(j int) float64 {
	if p.Lin == nil {
		return 0
	}
	return p.Lin[j]
}

// flipDelta computes 𝒒(𝐱 ± 𝐞ⱼ) - 𝒒(𝐱) for flipping bit j of x.
// With δ = 1-2𝐱ⱼ the change is δ𝐡ⱼ + 𝐇ⱼⱼ + 2δ∑ᵢ𝐇ⱼᵢ𝐱ᵢ.
func flipDelta(p *Problem, h [][]float64, x []float64, j int) float64 {
	delta := 1 - 2*x[j]
	dot := 0.0
	for i, v := range x {
		if v != 0 {
			dot += h[j][i]
		}
	}
	return delta*p.linAt(j) + h[j][j] + 2*delta*dot
}
