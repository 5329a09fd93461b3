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

	"gonum.org/v1/gonum/mat"
)

// Margules is the two-suffix Margules model for a binary solution,
// Gᴱ/RT = α·N·x₁·x₂, giving
//
//	ln γ₁ = α x₂²,  ln γ₂ = α x₁²
//
// with the dimensionless interaction parameter α. α > 2 produces a
// miscibility gap.
type Margules struct {
	Alpha float64
}

func margulesFractions(n []float64) (x1, x2, tot float64, err error) {
	if len(n) != 2 {
		return 0, 0, 0, fmt.Errorf("margules: binary model given %d species", len(n))
	}
	tot = n[0] + n[1]
	if tot <= 0 {
		// Dead phase: evaluate at the equimolar composition, matching how
		// the solver probes dead phases for rebirth.
		return 0.5, 0.5, 0, nil
	}
	return n[0] / tot, n[1] / tot, tot, nil
}

// UpdateLnGamma implements Model.
func (m Margules) UpdateLnGamma(n []float64, lnGamma []float64) error {
	x1, x2, _, err := margulesFractions(n)
	if err != nil {
		return err
	}
	lnGamma[0] = m.Alpha * x2 * x2
	lnGamma[1] = m.Alpha * x1 * x1
	return nil
}

// UpdateDLnGammaDn implements equilib.ActivityJacobian.
func (m Margules) UpdateDLnGammaDn(n []float64, jac *mat.Dense) error {
	x1, x2, tot, err := margulesFractions(n)
	if err != nil {
		return err
	}
	jac.Zero()
	if tot <= 0 {
		return nil
	}
	// ∂x₂/∂n₁ = −x₂/N, ∂x₂/∂n₂ = x₁/N, and symmetrically for x₁.
	jac.Set(0, 0, -2*m.Alpha*x2*x2/tot)
	jac.Set(0, 1, 2*m.Alpha*x2*x1/tot)
	jac.Set(1, 0, 2*m.Alpha*x1*x2/tot)
	jac.Set(1, 1, -2*m.Alpha*x1*x1/tot)
	return nil
}
