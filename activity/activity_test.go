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

package activity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestIdeal(t *testing.T) {
	lg := []float64{99, 99, 99}
	require.NoError(t, Ideal{}.UpdateLnGamma([]float64{1, 2, 3}, lg))
	for _, v := range lg {
		assert.Zero(t, v)
	}
	assert.Error(t, Ideal{}.UpdateLnGamma([]float64{1}, []float64{0, 0}))
}

func TestFuncAdapter(t *testing.T) {
	m := Func(func(n, lnGamma []float64) error {
		for i := range lnGamma {
			lnGamma[i] = 0.5
		}
		return nil
	})
	lg := make([]float64, 2)
	require.NoError(t, m.UpdateLnGamma([]float64{1, 1}, lg))
	assert.Equal(t, []float64{0.5, 0.5}, lg)
}

// checkJacobian compares an analytic phase-local Jacobian against
// central differences of the model itself.
func checkJacobian(t *testing.T, m interface {
	UpdateLnGamma(n, lnGamma []float64) error
	UpdateDLnGammaDn(n []float64, jac *mat.Dense) error
}, n []float64, rtol float64) {
	t.Helper()
	nsp := len(n)
	jac := mat.NewDense(nsp, nsp, nil)
	require.NoError(t, m.UpdateDLnGammaDn(n, jac))

	for j := 0; j < nsp; j++ {
		h := 1e-6 * (math.Abs(n[j]) + 1e-8)
		np := append([]float64(nil), n...)
		nm := append([]float64(nil), n...)
		np[j] += h
		nm[j] -= h
		lp := make([]float64, nsp)
		lm := make([]float64, nsp)
		require.NoError(t, m.UpdateLnGamma(np, lp))
		require.NoError(t, m.UpdateLnGamma(nm, lm))
		for i := 0; i < nsp; i++ {
			fd := (lp[i] - lm[i]) / (2 * h)
			an := jac.At(i, j)
			if math.Abs(fd) < 1e-12 && math.Abs(an) < 1e-12 {
				continue
			}
			assert.InDelta(t, fd, an, rtol*(math.Abs(fd)+1e-10),
				"d lnγ_%d/d n_%d", i, j)
		}
	}
}

func TestDebyeHuckelLimitingLaw(t *testing.T) {
	// Water with a trace 1:1 electrolyte at molality m: the limiting law
	// ln γ = −A z²√I must emerge for small ion sizes.
	d := NewDebyeHuckelWater([]float64{0, 1, -1}, []float64{0, 0, 0}, 0)
	// 1 kmol water (18.015 kg), ions at 1e-3 mol/kg.
	mass := 18.01528 // kg
	nIon := 1e-3 * mass / 1000
	n := []float64{1, nIon, nIon}
	lg := make([]float64, 3)
	require.NoError(t, d.UpdateLnGamma(n, lg))

	I := 1e-3
	want := -DHDefaultA * math.Sqrt(I)
	assert.InEpsilon(t, want, lg[1], 1e-6)
	assert.InEpsilon(t, want, lg[2], 1e-6)
	// The solvent deviation is higher order in I.
	assert.Less(t, math.Abs(lg[0]), 1e-6)
}

func TestDebyeHuckelIonSize(t *testing.T) {
	d := NewDebyeHuckelWater([]float64{0, 2, -1, -1}, []float64{0, 8, 3, 3}, 0)
	mass := 18.01528
	// A 2:1 electrolyte at 0.01 mol/kg, its anions split across two
	// identical species: I = ½(0.01·4 + 0.02·1) = 0.03.
	n := []float64{1, 0.01 * mass / 1000, 0.01 * mass / 1000, 0.01 * mass / 1000}
	// Species 2 and 3 are identical; their coefficients must agree.
	lg := make([]float64, 4)
	require.NoError(t, d.UpdateLnGamma(n, lg))
	assert.Equal(t, lg[2], lg[3])

	sI := math.Sqrt(0.03)
	want1 := -DHDefaultA * 4 * sI / (1 + DHDefaultB*8*sI)
	assert.InEpsilon(t, want1, lg[1], 1e-6)
	// The divalent ion deviates more strongly.
	assert.Less(t, lg[1], lg[2])
}

func TestDebyeHuckelJacobian(t *testing.T) {
	d := NewDebyeHuckelWater([]float64{0, 1, -1}, []float64{0, 9, 3.5}, 0)
	mass := 18.01528
	n := []float64{1, 0.05 * mass / 1000, 0.05 * mass / 1000}
	checkJacobian(t, d, n, 1e-4)
}

func TestDebyeHuckelCap(t *testing.T) {
	d := NewDebyeHuckelWater([]float64{0, 1, -1}, []float64{0, 4, 4}, 0)
	// Absurdly concentrated: the ionic strength is capped and the
	// Jacobian goes flat rather than exploding.
	n := []float64{1e-6, 10, 10}
	lg := make([]float64, 3)
	require.NoError(t, d.UpdateLnGamma(n, lg))
	for _, v := range lg {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	jac := mat.NewDense(3, 3, nil)
	require.NoError(t, d.UpdateDLnGammaDn(n, jac))
	assert.Zero(t, jac.At(1, 1))
}

func TestDebyeHuckelValidation(t *testing.T) {
	d := &DebyeHuckel{Charge: []float64{0, 1}, Size: []float64{0, 1}, Solvent: 5, SolventMW: 18}
	assert.Error(t, d.UpdateLnGamma([]float64{1, 1}, make([]float64, 2)))
	d2 := &DebyeHuckel{Charge: []float64{0}, Size: []float64{0, 1}, Solvent: 0, SolventMW: 18}
	assert.Error(t, d2.UpdateLnGamma([]float64{1, 1}, make([]float64, 2)))
}

func TestMargules(t *testing.T) {
	m := Margules{Alpha: 1.5}
	lg := make([]float64, 2)
	require.NoError(t, m.UpdateLnGamma([]float64{1, 3}, lg))
	// x1 = 0.25, x2 = 0.75.
	assert.InEpsilon(t, 1.5*0.75*0.75, lg[0], 1e-12)
	assert.InEpsilon(t, 1.5*0.25*0.25, lg[1], 1e-12)

	// At infinite dilution ln γ → α; the pure component is ideal.
	require.NoError(t, m.UpdateLnGamma([]float64{0, 1}, lg))
	assert.InEpsilon(t, 1.5, lg[0], 1e-12)
	assert.Zero(t, lg[1])

	// Wrong arity.
	assert.Error(t, m.UpdateLnGamma([]float64{1, 1, 1}, make([]float64, 3)))
}

func TestMargulesJacobian(t *testing.T) {
	checkJacobian(t, Margules{Alpha: 2.2}, []float64{0.3, 0.7}, 1e-4)
}

func TestMargulesDeadPhase(t *testing.T) {
	m := Margules{Alpha: 1.0}
	lg := make([]float64, 2)
	require.NoError(t, m.UpdateLnGamma([]float64{0, 0}, lg))
	// Evaluated at the equimolar composition.
	assert.InEpsilon(t, 0.25, lg[0], 1e-12)
	assert.InEpsilon(t, 0.25, lg[1], 1e-12)

	jac := mat.NewDense(2, 2, nil)
	require.NoError(t, m.UpdateDLnGammaDn([]float64{0, 0}, jac))
	assert.Zero(t, jac.At(0, 0))
}
