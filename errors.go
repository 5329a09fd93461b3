/*
Copyright © 2019 the Equilib authors.
This file is part of Equilib.

Equilib is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Equilib is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Equilib.  If not, see <http://www.gnu.org/licenses/>.
*/

package equilib

import (
	"errors"
	"fmt"
)

// ErrKind is the semantic category of a solver failure.
type ErrKind int

const (
	// ErrInvalidInput covers bad units, nonpositive temperature, total
	// moles out of range, and negative mole numbers.
	ErrInvalidInput ErrKind = iota + 1
	// ErrRankDeficient means the element matrix does not admit a full set
	// of linearly independent component species.
	ErrRankDeficient
	// ErrInfeasibleElements means the goal abundances contradict
	// nonnegativity.
	ErrInfeasibleElements
	// ErrNonConvergence means the solver exhausted its iteration budget.
	// The best-so-far composition is left readable in the System.
	ErrNonConvergence
	// ErrProviderFailure means an external callback returned non-finite
	// data.
	ErrProviderFailure
	// ErrCancelled means the caller's cancellation flag was raised. The
	// composition is the last committed iterate.
	ErrCancelled
)

func (k ErrKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "invalid input"
	case ErrRankDeficient:
		return "rank-deficient element matrix"
	case ErrInfeasibleElements:
		return "infeasible element abundances"
	case ErrNonConvergence:
		return "no convergence"
	case ErrProviderFailure:
		return "provider failure"
	case ErrCancelled:
		return "cancelled"
	}
	return "unknown error"
}

// SolveError is the error type surfaced by the equilibrate entry points.
// Internal adjustments (basis rebuilds, phase deaths, line-search
// damping) are silent; only top-level failures become errors.
type SolveError struct {
	Kind    ErrKind
	Message string

	// Iterations, ResidualG and ResidualElem carry diagnostics for
	// non-convergence failures.
	Iterations   int
	ResidualG    float64
	ResidualElem float64

	// Phase names the phase whose provider failed, for provider failures.
	Phase string

	wrapped error
}

func (e *SolveError) Error() string {
	s := "equilib: " + e.Kind.String()
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Kind == ErrNonConvergence {
		s += fmt.Sprintf(" after %d iterations (residual ΔG/RT=%.3e, element=%.3e)",
			e.Iterations, e.ResidualG, e.ResidualElem)
	}
	if e.wrapped != nil {
		s += ": " + e.wrapped.Error()
	}
	return s
}

func (e *SolveError) Unwrap() error { return e.wrapped }

// Is reports kind equality, so errors.Is(err, &SolveError{Kind: k})
// matches any SolveError of kind k.
func (e *SolveError) Is(target error) bool {
	var t *SolveError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func providerErr(phase, msg string) *SolveError {
	return &SolveError{Kind: ErrProviderFailure, Phase: phase, Message: msg}
}
