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
	"math"
	"testing"
)

// monoGas is a property evaluator for a nonreacting ideal monatomic
// gas: exact, monotone property curves for exercising the outer state
// driver without any chemistry.
type monoGas struct {
	cp float64 // J/(kmol K)
}

func (g monoGas) UpdateStandardStates(T, P float64, muSS, vSS []float64) error {
	for i := range muSS {
		muSS[i] = 0
		vSS[i] = GasConstant * T / P
	}
	return nil
}

func (g monoGas) Properties(T, P float64, n []float64) (Props, error) {
	var ntot float64
	for _, v := range n {
		ntot += v
	}
	return Props{
		H:  ntot * g.cp * T,
		S:  ntot * (g.cp*math.Log(T) - GasConstant*math.Log(P/OneAtm)),
		Cp: ntot * g.cp,
		V:  ntot * GasConstant * T / P,
	}, nil
}

func monoSystem(t *testing.T) (*System, monoGas) {
	t.Helper()
	g := monoGas{cp: 2.5 * GasConstant}
	sys, err := NewSystem(
		[]Species{{Name: "Ar", Phase: 0}},
		[]Phase{{Name: "gas", GasPhase: true, IdealSolution: true}},
		[]ElementConstraint{{Name: "Ar", Type: ElemAbsPos}},
		[][]float64{{1}},
		[]float64{2},
		g)
	if err != nil {
		t.Fatal(err)
	}
	sys.SetElementGoalsFromMoles()
	return sys, g
}

// For each fixed property pair, equilibrating to targets evaluated at a
// known state must recover that state.
func TestDriverClosure(t *testing.T) {
	const (
		T0 = 800.0
		P0 = 2e5
	)
	sys, g := monoSystem(t)
	want, err := g.Properties(T0, P0, sys.Moles)
	if err != nil {
		t.Fatal(err)
	}
	u0 := want.H - P0*want.V

	tests := []struct {
		name   string
		pair   PropertyPair
		v1, v2 float64
	}{
		{"HP", PairHP, want.H, P0},
		{"SP", PairSP, want.S, P0},
		{"TV", PairTV, T0, want.V},
		{"SV", PairSV, want.S, want.V},
		{"UV", PairUV, u0, want.V},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sys, _ := monoSystem(t)
			sys.T, sys.P = 300, OneAtm // start well away from the answer
			if _, err := Equilibrate(sys, tc.pair, tc.v1, tc.v2, dimensionlessOpts()); err != nil {
				t.Fatalf("Equilibrate: %v", err)
			}
			if different(sys.T, T0, 1e-4) {
				t.Errorf("T = %g, want %g", sys.T, T0)
			}
			if different(sys.P, P0, 1e-4) {
				t.Errorf("P = %g, want %g", sys.P, P0)
			}
		})
	}
}

func TestDriverTPDelegates(t *testing.T) {
	sys, _ := monoSystem(t)
	if _, err := Equilibrate(sys, PairTP, 500, 3e5, dimensionlessOpts()); err != nil {
		t.Fatalf("Equilibrate TP: %v", err)
	}
	if sys.T != 500 || sys.P != 3e5 {
		t.Errorf("state = (%g, %g), want (500, 3e5)", sys.T, sys.P)
	}
}

// Non-(T,P) pairs need a provider that can evaluate mixture properties.
func TestDriverNeedsEvaluator(t *testing.T) {
	sys := gasSystem(t,
		[]string{"A"}, []string{"M"},
		[][]float64{{1}},
		[]float64{1},
		[]float64{0})
	_, err := Equilibrate(sys, PairHP, 1e6, 1e5, dimensionlessOpts())
	if !errors.Is(err, &SolveError{Kind: ErrInvalidInput}) {
		t.Fatalf("want invalid-input, got %v", err)
	}
}

func TestDriverRejectsBadVolume(t *testing.T) {
	sys, _ := monoSystem(t)
	_, err := Equilibrate(sys, PairTV, 500, -1, dimensionlessOpts())
	if !errors.Is(err, &SolveError{Kind: ErrInvalidInput}) {
		t.Fatalf("want invalid-input, got %v", err)
	}
}
