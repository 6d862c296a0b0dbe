// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package admm decomposes Mixed-Binary Constrained Optimization problems
//
//	minimize 𝒒(𝐱) + 𝛗(𝐮) subject to
//	  - 𝐆𝐱 = 𝐛, 𝐠(𝐱) ≤ 0, 𝐱 ∈ {0,1}ⁿ
//	  - ℓ(𝐱,𝐮) ≤ 0, 𝐮 ∈ 𝑈 ⊆ ℝˡ
//
// into an alternating sequence of a binary quadratic subproblem (QUBO),
// convex continuous subproblems and a dual ascent step, and iterates the
// sequence to a consensus fixed point. The binary and continuous solving
// capabilities are consumed through the QUBOSolver and ConvexSolver ports,
// so exact, heuristic and sampled minimizers all plug into the same engine.
package admm

const (
	zero = 0.0
	half = 0.5
	one  = 1.0
	two  = 2.0
	ten  = 10.0
)

// BlockKind identifies the subproblem block inside one iteration.
type BlockKind int

const (
	// BlockBinary the QUBO update of the binary variables 𝐱.
	BlockBinary BlockKind = iota
	// BlockContinuous the convex update of the continuous variables 𝐮.
	BlockContinuous
	// BlockConsensus the update of the relaxation copy 𝐳.
	BlockConsensus
)

func (b BlockKind) String() string {
	switch b {
	case BlockBinary:
		return "binary"
	case BlockContinuous:
		return "continuous"
	case BlockConsensus:
		return "consensus"
	}
	return "unknown"
}

// phase tracks the engine state machine of a single solve call.
type phase int

const (
	phaseInitialized phase = iota
	phaseIterating
	phaseConverged
	phaseMaxIter
)
