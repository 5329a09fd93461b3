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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default extended Debye–Hückel parameters for water near 298.15 K, in
// natural-log units: A = ln(10)·0.509 kg^½/mol^½ and
// B = 0.328 kg^½/(mol^½ Å).
const (
	DHDefaultA = 1.17202
	DHDefaultB = 0.328
)

// Cap on the ionic strength beyond which the model is evaluated at the
// cap, so concentrated trial compositions during iteration cannot blow
// up the coefficients.
const dhMaxI = 30.0

// DebyeHuckel is the extended Debye–Hückel activity model for a dilute
// electrolyte phase on the molality scale:
//
//	ln γᵢ = −A zᵢ² √I / (1 + B aᵢ √I)
//
// with ionic strength I = ½ Σ mₖ zₖ² [mol/kg]. The solvent gets the
// osmotic-consistent limiting-law term (2A/3)·M₀·I^{3/2}. Charges and
// ion sizes are phase-local, ordered like the phase's species list.
type DebyeHuckel struct {
	// A and B are the Debye–Hückel parameters in ln units; zero values
	// are replaced by the 298 K water defaults.
	A, B float64

	// Charge is the ionic charge of each species in electron units.
	Charge []float64

	// Size is the ion-size parameter aᵢ in Ångström. A zero entry
	// degrades that ion to the limiting law.
	Size []float64

	// Solvent is the phase-local index of the solvent species.
	Solvent int

	// SolventMW is the solvent molecular weight [kg/kmol].
	SolventMW float64
}

// NewDebyeHuckelWater returns a model with the 298 K water defaults for
// the given ionic charges and sizes, with the solvent at index solvent.
func NewDebyeHuckelWater(charge, size []float64, solvent int) *DebyeHuckel {
	return &DebyeHuckel{
		A: DHDefaultA, B: DHDefaultB,
		Charge: charge, Size: size,
		Solvent: solvent, SolventMW: 18.01528,
	}
}

func (d *DebyeHuckel) check(n []float64) error {
	if len(d.Charge) != len(n) || len(d.Size) != len(n) {
		return fmt.Errorf("debye-huckel: %d species but %d charges and %d sizes",
			len(n), len(d.Charge), len(d.Size))
	}
	if d.Solvent < 0 || d.Solvent >= len(n) {
		return fmt.Errorf("debye-huckel: solvent index %d out of range", d.Solvent)
	}
	if d.SolventMW <= 0 {
		return fmt.Errorf("debye-huckel: solvent molecular weight must be positive")
	}
	return nil
}

func (d *DebyeHuckel) params() (A, B float64) {
	A, B = d.A, d.B
	if A == 0 {
		A = DHDefaultA
	}
	if B == 0 {
		B = DHDefaultB
	}
	return A, B
}

// ionicStrength returns I [mol/kg] and whether the cap was hit. n is in
// kmol; the solvent mass is n₀·M₀ kg, and mₖ = 1000·nₖ over that mass.
func (d *DebyeHuckel) ionicStrength(n []float64) (float64, bool) {
	mass := n[d.Solvent] * d.SolventMW // kg
	if mass <= 0 {
		return dhMaxI, true
	}
	var I float64
	for k := range n {
		if k == d.Solvent {
			continue
		}
		m := 1000 * n[k] / mass
		I += 0.5 * m * d.Charge[k] * d.Charge[k]
	}
	if I >= dhMaxI {
		return dhMaxI, true
	}
	return I, false
}

// UpdateLnGamma implements Model.
func (d *DebyeHuckel) UpdateLnGamma(n []float64, lnGamma []float64) error {
	if err := d.check(n); err != nil {
		return err
	}
	A, B := d.params()
	I, _ := d.ionicStrength(n)
	sI := math.Sqrt(I)
	m0 := d.SolventMW / 1000 // kg/mol
	for k := range n {
		if k == d.Solvent {
			lnGamma[k] = 2 * A / 3 * m0 * I * sI
			continue
		}
		z := d.Charge[k]
		lnGamma[k] = -A * z * z * sI / (1 + B*d.Size[k]*sI)
	}
	return nil
}

// UpdateDLnGammaDn implements equilib.ActivityJacobian with the analytic
// derivative through the ionic strength. At the cap the coefficients are
// constant and the Jacobian is zero.
func (d *DebyeHuckel) UpdateDLnGammaDn(n []float64, jac *mat.Dense) error {
	if err := d.check(n); err != nil {
		return err
	}
	nsp := len(n)
	jac.Zero()
	A, B := d.params()
	I, capped := d.ionicStrength(n)
	if capped || I == 0 {
		return nil
	}
	sI := math.Sqrt(I)
	mass := n[d.Solvent] * d.SolventMW
	m0 := d.SolventMW / 1000

	// dI/dnⱼ: ½ zⱼ²·1000/mass for ions, −I/n₀ for the solvent.
	dIdn := make([]float64, nsp)
	for j := range n {
		if j == d.Solvent {
			dIdn[j] = -I / n[d.Solvent]
		} else {
			dIdn[j] = 0.5 * d.Charge[j] * d.Charge[j] * 1000 / mass
		}
	}
	for k := range n {
		// d lnγₖ / dI
		var dgdI float64
		if k == d.Solvent {
			dgdI = A * m0 * sI
		} else {
			z := d.Charge[k]
			den := 1 + B*d.Size[k]*sI
			// d/dI of −A z² √I/(1+Ba√I) via d√I/dI = 1/(2√I)
			dgdI = -A * z * z / (den * den) / (2 * sI)
		}
		for j := range n {
			jac.Set(k, j, dgdI*dIdn[j])
		}
	}
	return nil
}
