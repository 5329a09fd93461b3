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
	"math"

	"gonum.org/v1/gonum/mat"
)

// projectFeasible coerces the working composition onto the
// element-constraint manifold: the minimum-norm correction Δn with
// E·(n+Δn) = b, followed by clamping to nonnegativity. Clamping can
// reintroduce a residual, so the projection repeats a few times; the
// main iteration preserves element balance exactly from then on, so a
// rough landing is enough.
func (s *solver) projectFeasible() error {
	const passes = 5
	m := len(s.activeElems)

	cols := make([]int, 0, s.nsp)
	for i := 0; i < s.nsp; i++ {
		if s.sys.Species[i].Kind == UnknownVoltage || s.status[i] == StatusDeleted {
			continue
		}
		cols = append(cols, i)
	}
	a := mat.NewDense(m, len(cols), nil)
	for r, j := range s.activeElems {
		for c, i := range cols {
			a.Set(r, c, s.sys.Formula[i][j])
		}
	}

	maxGoal := 0.0
	for _, j := range s.activeElems {
		if g := math.Abs(s.goals[j]); g > maxGoal {
			maxGoal = g
		}
	}
	tol := s.opts.Rtol * (maxGoal + 1)

	rhs := mat.NewVecDense(m, nil)
	var dn mat.VecDense
	for pass := 0; pass < passes; pass++ {
		worst := 0.0
		for r, j := range s.activeElems {
			var sum float64
			for _, i := range cols {
				sum += s.sys.Formula[i][j] * s.n[i]
			}
			resid := s.goals[j] - sum
			rhs.SetVec(r, resid)
			if ab := math.Abs(resid); ab > worst {
				worst = ab
			}
		}
		if worst <= tol {
			return nil
		}
		if err := dn.SolveVec(a, rhs); err != nil {
			return &SolveError{Kind: ErrInfeasibleElements,
				Message: "could not project the composition onto the element constraints"}
		}
		for c, i := range cols {
			s.n[i] = math.Max(0, s.n[i]+dn.AtVec(c))
		}
	}
	// Leave whatever residual clamping produced to the main iteration's
	// element check.
	return nil
}
