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

import "math"

// Physical constants.
const (
	// GasConstant is the universal gas constant [J/(kmol K)].
	GasConstant = 8.314472e3
	// Faraday is the Faraday constant [C/kmol]: elementary charge times
	// Avogadro's number on a kmol basis.
	Faraday = 1.602e-19 * 6.022136736e26
	// OneAtm is one standard atmosphere [Pa].
	OneAtm = 101325.0
)

// fallbackT substitutes a room-temperature default when the caller
// passes a nonpositive temperature to a unit conversion.
func fallbackT(T float64) float64 {
	if T <= 0 {
		return 293.15
	}
	return T
}

// rtMult returns the dimensional multiplier RT in the given unit system:
// chemical potentials in that system divided by rtMult are µ/RT.
func rtMult(units UnitSystem, T float64) float64 {
	T = fallbackT(T)
	switch units {
	case UnitsMKS:
		return T * GasConstant
	case UnitsKJMol:
		return T * 8.314472e-3
	case UnitsKCalMol:
		return T * 8.314472e-3 / 4.184
	case UnitsKelvin:
		return T
	case UnitsDimensionless:
		return 1
	}
	return math.NaN()
}

// faradayMult returns the multiplier for electric-charge terms, F/RT in
// the given unit system.
func faradayMult(units UnitSystem, T float64) float64 {
	T = fallbackT(T)
	switch units {
	case UnitsMKS, UnitsKJMol, UnitsKCalMol:
		return Faraday / (T * GasConstant)
	case UnitsKelvin:
		return Faraday / T
	case UnitsDimensionless:
		return Faraday
	}
	return math.NaN()
}

// moleScale returns the factor that maps the problem onto an O(1) total
// mole number. ntot is the initial total moles plus the summed absolute
// abundance goals of the ordinary elements.
func moleScale(ntot float64) (float64, error) {
	if ntot < 1e-200 || ntot > 1e200 || math.IsNaN(ntot) {
		return 0, &SolveError{Kind: ErrInvalidInput,
			Message: "total input moles outside the range handled by the solver"}
	}
	switch {
	case ntot > 1e4:
		return ntot / 1e4, nil
	case ntot < 1e-4:
		return ntot / 1e-4, nil
	}
	return 1, nil
}

// nondimensionalize divides the working mole numbers and element goals
// by the mole scale. Voltage-kind unknowns are left alone.
func (s *solver) nondimensionalize() error {
	ntot := 0.0
	for i := range s.n {
		if s.sys.Species[i].Kind == UnknownVoltage {
			continue
		}
		ntot += s.n[i]
	}
	for j := range s.sys.Elements {
		if s.sys.Elements[j].Type == ElemAbsPos {
			ntot += math.Abs(s.goals[j])
		}
	}
	scale, err := moleScale(ntot)
	if err != nil {
		return err
	}
	s.scale = scale
	if scale == 1 {
		return nil
	}
	s.dbg.printf(2, "using a mole scale of %g until further notice", scale)
	inv := 1 / scale
	for i := range s.n {
		if s.sys.Species[i].Kind == UnknownVoltage {
			continue
		}
		s.n[i] *= inv
	}
	for j := range s.goals {
		s.goals[j] *= inv
	}
	for p := range s.inert {
		s.inert[p] *= inv
	}
	return nil
}

// redimensionalize undoes nondimensionalize and writes the dimensional
// chemical potentials back into the system, multiplied by RT in the
// requested unit system.
func (s *solver) redimensionalize() {
	if s.scale != 1 {
		for i := range s.n {
			if s.sys.Species[i].Kind == UnknownVoltage {
				continue
			}
			s.n[i] *= s.scale
		}
		for j := range s.goals {
			s.goals[j] *= s.scale
		}
		for p := range s.inert {
			s.inert[p] *= s.scale
		}
	}
	rt := rtMult(s.opts.Units, s.T)
	for i := range s.mu {
		s.sys.Mu[i] = s.mu[i] * rt
	}
}
