// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"errors"
	"fmt"
)

// ErrMalformedProblem reports a structural violation of the problem
// assumptions, detected before the first iteration and never retried.
var ErrMalformedProblem = errors.New("admm: malformed problem")

// ErrSubproblemFailure reports that a QUBO or convex solve failed,
// aborting the solve call. Match it with errors.Is against *BlockError.
var ErrSubproblemFailure = errors.New("admm: subproblem failure")

// ErrInfeasible is returned by solver ports for subproblems without a
// feasible point.
var ErrInfeasible = errors.New("admm: subproblem infeasible")

// ErrSolverFailure is returned by solver ports for internal failures,
// timeouts and cancellations.
var ErrSolverFailure = errors.New("admm: solver failure")

// BlockError carries the failing block and iteration index of an aborted
// solve. It unwraps to both the port error and ErrSubproblemFailure.
type BlockError struct {
	Iteration int
	Block     BlockKind
	Err       error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("admm: %s block failed at iteration %d: %v", e.Block, e.Iteration, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

func (e *BlockError) Is(target error) bool { return target == ErrSubproblemFailure }

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedProblem, fmt.Sprintf(format, a...))
}
