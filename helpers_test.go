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
	"testing"
)

// constMu is a standard-state provider returning fixed dimensionless
// potentials, for tests that want exact hand-computable equilibria.
type constMu struct {
	mu []float64
}

func (c constMu) UpdateStandardStates(T, P float64, muSS, vSS []float64) error {
	copy(muSS, c.mu)
	for i := range vSS {
		vSS[i] = 0
	}
	return nil
}

// different reports whether a and b disagree beyond a relative tolerance.
func different(a, b, rtol float64) bool {
	return math.Abs(a-b) > rtol*(math.Abs(b)+1e-14)
}

// gasSystem builds a one-phase ideal-gas system with the given species
// names, formula matrix and starting moles, with element goals taken
// from the moles.
func gasSystem(t *testing.T, names []string, elems []string, formula [][]float64,
	moles []float64, mu []float64) *System {
	t.Helper()
	species := make([]Species, len(names))
	for i, n := range names {
		species[i] = Species{Name: n, Phase: 0}
	}
	phases := []Phase{{Name: "gas", GasPhase: true, IdealSolution: true}}
	elements := make([]ElementConstraint, len(elems))
	for j, n := range elems {
		elements[j] = ElementConstraint{Name: n, Type: ElemAbsPos}
	}
	sys, err := NewSystem(species, phases, elements, formula, moles, constMu{mu})
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	sys.SetElementGoalsFromMoles()
	return sys
}

// dimensionlessOpts returns options that keep chemical potentials as
// µ/RT and force the VCS solver.
func dimensionlessOpts() *Options {
	o := DefaultOptions()
	o.Units = UnitsDimensionless
	o.Solver = SolverMultiPhaseVCS
	return o
}
