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

// Package activity provides activity-coefficient models for multispecies
// solution phases: an extended Debye–Hückel model for dilute
// electrolytes and a two-suffix Margules model for binary mixtures. The
// models satisfy the equilib.ActivityModel interface, and both
// parameterized models also supply the analytic composition Jacobian
// ∂ ln γᵢ/∂ nⱼ used for the solver's Hessian correction.
package activity

import "fmt"

// Model computes activity coefficients from phase-local mole numbers.
// It matches equilib.ActivityModel.
type Model interface {
	UpdateLnGamma(n []float64, lnGamma []float64) error
}

// Ideal is the unit-activity-coefficient model. It exists so a phase can
// carry an explicit model rather than a nil; the solver treats both the
// same way.
type Ideal struct{}

// UpdateLnGamma implements Model.
func (Ideal) UpdateLnGamma(n []float64, lnGamma []float64) error {
	if len(lnGamma) != len(n) {
		return fmt.Errorf("activity: composition length %d but coefficient length %d", len(n), len(lnGamma))
	}
	for i := range lnGamma {
		lnGamma[i] = 0
	}
	return nil
}

// Func adapts a plain function to the Model interface, for callers that
// want to supply activity coefficients from their own code.
type Func func(n []float64, lnGamma []float64) error

// UpdateLnGamma implements Model.
func (f Func) UpdateLnGamma(n []float64, lnGamma []float64) error { return f(n, lnGamma) }
