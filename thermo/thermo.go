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

// Package thermo evaluates standard-state thermodynamic properties of
// chemical species: reference-state heat capacity, enthalpy and entropy
// from NASA-7, Shomate or constant-cp parameterizations, extended to
// pressure-dependent standard states by a small set of species models
// (ideal gas, constant molar volume, temperature-dependent molar
// volume). A Manager aggregates per-species models into the provider
// interfaces consumed by the equilib solver.
package thermo

import "math"

// RPerMol is the universal gas constant on a gmol basis [J/(mol K)].
const RPerMol = 8.314472

// RefModel evaluates dimensionless reference-state properties at the
// model's reference pressure.
type RefModel interface {
	// CpR is cp°/R at temperature T [K].
	CpR(T float64) float64
	// EnthalpyRT is h°/RT, including the enthalpy of formation.
	EnthalpyRT(T float64) float64
	// EntropyR is s°/R.
	EntropyR(T float64) float64
}

// NASA7 is the seven-coefficient NASA polynomial parameterization over
// two temperature ranges:
//
//	cp/R = a1 + a2 T + a3 T² + a4 T³ + a5 T⁴
//	h/RT = a1 + a2 T/2 + a3 T²/3 + a4 T³/4 + a5 T⁴/5 + a6/T
//	s/R  = a1 ln T + a2 T + a3 T²/2 + a4 T³/3 + a5 T⁴/4 + a7
type NASA7 struct {
	TLow, TMid, THigh float64
	Low, High         [7]float64
}

func (p NASA7) coeffs(T float64) *[7]float64 {
	if T < p.TMid {
		return &p.Low
	}
	return &p.High
}

// CpR implements RefModel.
func (p NASA7) CpR(T float64) float64 {
	a := p.coeffs(T)
	return a[0] + T*(a[1]+T*(a[2]+T*(a[3]+T*a[4])))
}

// EnthalpyRT implements RefModel.
func (p NASA7) EnthalpyRT(T float64) float64 {
	a := p.coeffs(T)
	return a[0] + T*(a[1]/2+T*(a[2]/3+T*(a[3]/4+T*a[4]/5))) + a[5]/T
}

// EntropyR implements RefModel.
func (p NASA7) EntropyR(T float64) float64 {
	a := p.coeffs(T)
	return a[0]*math.Log(T) + T*(a[1]+T*(a[2]/2+T*(a[3]/3+T*a[4]/4))) + a[6]
}

// Shomate is the NIST Shomate parameterization with t = T/1000:
//
//	cp [J/(mol K)] = A + B t + C t² + D t³ + E/t²
//	h − h298 [kJ/mol] = A t + B t²/2 + C t³/3 + D t⁴/4 − E/t + F − H
//	s [J/(mol K)] = A ln t + B t + C t²/2 + D t³/3 − E/(2t²) + G
//
// Hf298 [kJ/mol] anchors the absolute enthalpy.
type Shomate struct {
	A, B, C, D, E, F, G, H float64
	Hf298                  float64
}

// CpR implements RefModel.
func (p Shomate) CpR(T float64) float64 {
	t := T / 1000
	return (p.A + t*(p.B+t*(p.C+t*p.D)) + p.E/(t*t)) / RPerMol
}

// EnthalpyRT implements RefModel.
func (p Shomate) EnthalpyRT(T float64) float64 {
	t := T / 1000
	dh := p.A*t + p.B*t*t/2 + p.C*t*t*t/3 + p.D*t*t*t*t/4 - p.E/t + p.F - p.H // kJ/mol
	return (p.Hf298 + dh) * 1000 / (RPerMol * T)
}

// EntropyR implements RefModel.
func (p Shomate) EntropyR(T float64) float64 {
	t := T / 1000
	return (p.A*math.Log(t) + p.B*t + p.C*t*t/2 + p.D*t*t*t/3 - p.E/(2*t*t) + p.G) / RPerMol
}

// ConstCp is a constant-heat-capacity reference state anchored at T0.
// H0 [J/kmol], S0 [J/(kmol K)] and Cp0 [J/(kmol K)] are on a kmol basis.
type ConstCp struct {
	T0, H0, S0, Cp0 float64
}

const rPerKmol = RPerMol * 1000

// CpR implements RefModel.
func (p ConstCp) CpR(T float64) float64 { return p.Cp0 / rPerKmol }

// EnthalpyRT implements RefModel.
func (p ConstCp) EnthalpyRT(T float64) float64 {
	return (p.H0 + p.Cp0*(T-p.T0)) / (rPerKmol * T)
}

// EntropyR implements RefModel.
func (p ConstCp) EntropyR(T float64) float64 {
	return (p.S0 + p.Cp0*math.Log(T/p.T0)) / rPerKmol
}
