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

package thermo

// Kind tags the pressure dependence of a species' standard state.
type Kind int

const (
	// IdealGas: the standard state at pressure P is the reference state
	// shifted by RT ln(P/Pref); molar volume RT/P.
	IdealGas Kind = iota
	// ConstVol: an incompressible condensed species with a fixed molar
	// volume.
	ConstVol
	// SSVol: a condensed species whose molar volume is a quadratic in
	// temperature.
	SSVol
)

// PDSS is a pressure-dependent standard state: a reference-state model
// plus the rule for extending it away from the reference pressure. The
// zero Kind is IdealGas.
type PDSS struct {
	Kind Kind
	Ref  RefModel

	// V0 is the molar volume [m³/kmol] for ConstVol.
	V0 float64

	// VolCoeffs gives V(T) = c0 + c1 T + c2 T² [m³/kmol] for SSVol.
	VolCoeffs [3]float64
}

// MolarVolume is the standard-state molar volume [m³/kmol] at (T, P).
func (p PDSS) MolarVolume(T, P float64) float64 {
	switch p.Kind {
	case IdealGas:
		return rPerKmol * T / P
	case ConstVol:
		return p.V0
	case SSVol:
		return p.VolCoeffs[0] + T*(p.VolCoeffs[1]+T*p.VolCoeffs[2])
	}
	return 0
}

// MuRT is the dimensionless standard-state chemical potential µ°/RT at
// (T, P) with reference pressure pref.
func (p PDSS) MuRT(T, P, pref float64) float64 {
	g := p.Ref.EnthalpyRT(T) - p.Ref.EntropyR(T)
	switch p.Kind {
	case IdealGas:
		return g + logRatio(P, pref)
	case ConstVol, SSVol:
		return g + p.MolarVolume(T, P)*(P-pref)/(rPerKmol*T)
	}
	return g
}

// EnthalpyRT is h°/RT at (T, P).
func (p PDSS) EnthalpyRT(T, P, pref float64) float64 {
	h := p.Ref.EnthalpyRT(T)
	switch p.Kind {
	case ConstVol, SSVol:
		h += p.MolarVolume(T, P) * (P - pref) / (rPerKmol * T)
	}
	return h
}

// EntropyR is s°/RT at (T, P): the reference entropy, lowered by
// ln(P/Pref) for gases.
func (p PDSS) EntropyR(T, P, pref float64) float64 {
	s := p.Ref.EntropyR(T)
	if p.Kind == IdealGas {
		s -= logRatio(P, pref)
	}
	return s
}

// CpR is cp°/R at T.
func (p PDSS) CpR(T float64) float64 { return p.Ref.CpR(T) }
