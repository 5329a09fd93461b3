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
	"testing"
)

// prep runs element analysis and basis selection on a fresh solver.
func prep(t *testing.T, sys *System) *solver {
	t.Helper()
	o, err := dimensionlessOpts().sanitized()
	if err != nil {
		t.Fatal(err)
	}
	s := newSolver(sys, 300, 1e5, o)
	if err := s.analyzeElements(); err != nil {
		t.Fatalf("analyzeElements: %v", err)
	}
	if err := s.selectBasis(); err != nil {
		t.Fatalf("selectBasis: %v", err)
	}
	return s
}

func TestSelectBasisKnallgas(t *testing.T) {
	sys := gasSystem(t,
		[]string{"H2", "O2", "H2O"}, []string{"H", "O"},
		[][]float64{{2, 0}, {0, 2}, {2, 1}},
		[]float64{2, 1, 0},
		[]float64{0, 0, -30})
	s := prep(t, sys)

	// The two most abundant species span element space and become the
	// components; water is the lone formation reaction.
	if len(s.comps) != 2 || s.comps[0] != 0 || s.comps[1] != 1 {
		t.Fatalf("components = %v, want [0 1]", s.comps)
	}
	if len(s.noncomps) != 1 || s.noncomps[0] != 2 {
		t.Fatalf("noncomponents = %v, want [2]", s.noncomps)
	}
	// H2O = H2 + ½O2, so a unit formation step destroys one H2 and half
	// an O2.
	if different(s.stoich[0][0], -1, 1e-12) || different(s.stoich[0][1], -0.5, 1e-12) {
		t.Errorf("stoich = %v, want [-1 -0.5]", s.stoich[0])
	}
	// Everything lives in one phase; a formation step converts 1.5 moles
	// of reactants into 1 mole of product.
	if different(s.dnPhase[0][0], -0.5, 1e-12) {
		t.Errorf("dnPhase = %v, want [-0.5]", s.dnPhase[0])
	}
}

// Reselecting the basis without any composition change must reproduce
// the same components.
func TestSelectBasisIdempotent(t *testing.T) {
	sys := gasSystem(t,
		[]string{"H2", "O2", "H2O", "OH", "H"}, []string{"H", "O"},
		[][]float64{{2, 0}, {0, 2}, {2, 1}, {1, 1}, {1, 0}},
		[]float64{1, 2, 3, 1e-4, 1e-6},
		[]float64{0, 0, 0, 0, 0})
	s := prep(t, sys)
	first := append([]int(nil), s.comps...)
	if err := s.selectBasis(); err != nil {
		t.Fatalf("second selectBasis: %v", err)
	}
	for i := range first {
		if s.comps[i] != first[i] {
			t.Fatalf("basis changed on reselect: %v then %v", first, s.comps)
		}
	}
}

// A charge-neutrality row that is a linear combination of the element
// rows is excluded from basis selection but keeps the solve feasible.
func TestAnalyzeElementsDependentRow(t *testing.T) {
	species := []Species{
		{Name: "H2O", Phase: 0},
		{Name: "H+", Phase: 0, Charge: 1},
		{Name: "OH-", Phase: 0, Charge: -1},
	}
	phases := []Phase{{Name: "liquid", IdealSolution: true}}
	elements := []ElementConstraint{
		{Name: "H", Type: ElemAbsPos},
		{Name: "O", Type: ElemAbsPos},
		{Name: "charge", Type: ElemChargeNeutrality},
	}
	// The charge column equals H − 2·O for every species.
	formula := [][]float64{
		{2, 1, 0},
		{1, 0, 1},
		{1, 1, -1},
	}
	moles := []float64{1, 1e-9, 1e-9}
	sys, err := NewSystem(species, phases, elements, formula, moles, constMu{[]float64{0, 20, 20}})
	if err != nil {
		t.Fatal(err)
	}
	sys.SetElementGoalsFromMoles()

	s := prep(t, sys)
	if len(s.activeElems) != 2 || s.activeElems[0] != 0 || s.activeElems[1] != 1 {
		t.Fatalf("active elements = %v, want [0 1]", s.activeElems)
	}
	if len(s.comps) != 2 {
		t.Fatalf("components = %v, want two", s.comps)
	}

	// An inconsistent goal on the dependent row is an infeasibility.
	sys.Elements[2].Goal = 0.1
	o, _ := dimensionlessOpts().sanitized()
	s2 := newSolver(sys, 300, 1e5, o)
	err = s2.analyzeElements()
	if !errors.Is(err, &SolveError{Kind: ErrInfeasibleElements}) {
		t.Fatalf("want infeasible-elements, got %v", err)
	}
}

func TestAnalyzeElementsRankZero(t *testing.T) {
	sys := gasSystem(t,
		[]string{"A"}, []string{"X"},
		[][]float64{{0}},
		[]float64{1},
		[]float64{0})
	o, _ := dimensionlessOpts().sanitized()
	s := newSolver(sys, 300, 1e5, o)
	err := s.analyzeElements()
	if !errors.Is(err, &SolveError{Kind: ErrRankDeficient}) {
		t.Fatalf("want rank-deficient, got %v", err)
	}
}

// An element that appears in no species but carries a nonzero goal can
// never be satisfied.
func TestAnalyzeElementsAbsentElement(t *testing.T) {
	sys := gasSystem(t,
		[]string{"A"}, []string{"X", "Y"},
		[][]float64{{1, 0}},
		[]float64{1},
		[]float64{0})
	sys.Elements[1].Goal = 2
	o, _ := dimensionlessOpts().sanitized()
	s := newSolver(sys, 300, 1e5, o)
	err := s.analyzeElements()
	if !errors.Is(err, &SolveError{Kind: ErrInfeasibleElements}) {
		t.Fatalf("want infeasible-elements, got %v", err)
	}
}

func TestComponentExhausted(t *testing.T) {
	sys := gasSystem(t,
		[]string{"H2", "O2", "H2O"}, []string{"H", "O"},
		[][]float64{{2, 0}, {0, 2}, {2, 1}},
		[]float64{2, 1, 0},
		[]float64{0, 0, -30})
	s := prep(t, sys)
	if s.componentExhausted() {
		t.Error("no component should be exhausted at the start")
	}
	s.n[s.comps[0]] = 1e-14
	if !s.componentExhausted() {
		t.Error("component at 1e-14 moles should trigger a basis rebuild")
	}
}
