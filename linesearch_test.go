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

// lsSolver builds an isomerization solver with a given A/B split and
// µ°B/RT, ready for line searching on the single formation reaction.
// nA > nB keeps A as the component, so the reaction forms B.
func lsSolver(t *testing.T, nA, nB, muB float64) *solver {
	t.Helper()
	sys := gasSystem(t,
		[]string{"A", "B"}, []string{"M"},
		[][]float64{{1}, {1}},
		[]float64{nA, nB},
		[]float64{0, muB})
	o, _ := dimensionlessOpts().sanitized()
	s := newSolver(sys, 400, 1e5, o)
	if err := s.analyzeElements(); err != nil {
		t.Fatal(err)
	}
	if err := sys.Thermo.UpdateStandardStates(s.T, s.P, s.mu0, s.v0); err != nil {
		t.Fatal(err)
	}
	if err := s.selectBasis(); err != nil {
		t.Fatal(err)
	}
	s.classify()
	s.updatePhaseTotals()
	if err := s.updateActivity(); err != nil {
		t.Fatal(err)
	}
	s.chemPotAll()
	s.computeDeltaG()
	if len(s.noncomps) != 1 {
		t.Fatalf("expected one reaction, got %d", len(s.noncomps))
	}
	return s
}

func TestLineSearchGuards(t *testing.T) {
	// x_B above its equilibrium share: forming more B raises G, so a
	// positive step is refused outright.
	s := lsSolver(t, 0.6, 0.4, 1)
	if s.dg[0] <= 0 {
		t.Fatalf("setup: expected uphill ΔG, got %g", s.dg[0])
	}
	dx, err := s.lineSearch(0, 0.1)
	if err != nil || dx != 0 {
		t.Errorf("uphill step accepted: dx=%g err=%v", dx, err)
	}

	// A zero candidate step stays zero.
	if dx, err := s.lineSearch(0, 0); err != nil || dx != 0 {
		t.Errorf("zero step: dx=%g err=%v", dx, err)
	}
}

func TestLineSearchAcceptsDownhillStep(t *testing.T) {
	// Far below equilibrium: a small forward step stays downhill and is
	// accepted in full.
	s := lsSolver(t, 0.9, 0.1, -1)
	if s.dg[0] >= 0 {
		t.Fatalf("setup: expected downhill ΔG, got %g", s.dg[0])
	}
	dx, err := s.lineSearch(0, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if dx != 0.01 {
		t.Errorf("small downhill step cut to %g", dx)
	}
}

func TestLineSearchTrimsOvershoot(t *testing.T) {
	// A step big enough to blow through the equilibrium split must come
	// back shortened, landing near the ΔG = 0 crossing.
	s := lsSolver(t, 0.9, 0.1, -1)
	nEq := math.E / (1 + math.E) // equilibrium n_B
	dx, err := s.lineSearch(0, 0.85)
	if err != nil {
		t.Fatal(err)
	}
	if dx <= 0 || dx >= 0.85 {
		t.Fatalf("overshooting step not trimmed: %g", dx)
	}
	if got := 0.1 + dx; math.Abs(got-nEq) > 0.25 {
		t.Errorf("trimmed step lands at n_B=%g, equilibrium is %g", got, nEq)
	}
	// The search works in trial buffers only.
	if s.n[0] != 0.9 || s.n[1] != 0.1 {
		t.Errorf("committed state mutated: %v", s.n[:2])
	}
}

// Isomerization is mole-balanced, so the net phase change is zero; the
// trial ΔG must still track the composition through the participating
// phase, flipping sign when the step overshoots the equilibrium split.
func TestDeltaGRefreshMoleBalanced(t *testing.T) {
	s := lsSolver(t, 0.9, 0.1, -1)
	if s.dnPhase[0][0] != 0 {
		t.Fatalf("setup: expected mole-balanced reaction, dnPhase=%g", s.dnPhase[0][0])
	}
	if s.phasePart[0][0] == 0 {
		t.Fatal("gas phase not marked as participating in its own reaction")
	}

	copy(s.lnGammaTrial, s.lnGamma)
	copy(s.muTrial, s.mu)
	dg0, err := s.deltaGRxnAt(0, s.n, s.tPhase, s.lnGammaTrial, s.muTrial)
	if err != nil {
		t.Fatal(err)
	}
	if dg0 >= 0 {
		t.Fatalf("setup: expected downhill ΔG, got %g", dg0)
	}

	// A step to n_B = 0.9 is far past the e/(1+e) equilibrium split.
	s.trialStep(0, s.noncomps[0], 0.8)
	dg1, err := s.deltaGRxnAt(0, s.nTrial, s.tPhaseTrial, s.lnGammaTrial, s.muTrial)
	if err != nil {
		t.Fatal(err)
	}
	if dg1 <= 0 {
		t.Errorf("trial ΔG did not cross zero on overshoot: %g -> %g", dg0, dg1)
	}
}
