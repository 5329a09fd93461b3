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

import (
	"fmt"
	"math"

	"github.com/chemsolve/equilib"
)

// logRatio is ln(P/pref) with a guard against nonpositive arguments.
func logRatio(P, pref float64) float64 {
	if P <= 0 || pref <= 0 {
		return math.NaN()
	}
	return math.Log(P / pref)
}

// Manager aggregates per-species standard-state models and implements
// both equilib.StandardStateProvider and equilib.PropertyEvaluator.
// Species must be registered in the same order the solver numbers them.
type Manager struct {
	// Pref is the reference pressure [Pa] of the registered reference
	// states; the default is one atmosphere.
	Pref float64

	names  []string
	phases []int
	models []PDSS
}

// NewManager returns an empty manager with a one-atmosphere reference
// pressure.
func NewManager() *Manager {
	return &Manager{Pref: equilib.OneAtm}
}

// Add registers a species' standard-state model. phase is the species'
// phase index in the solver's numbering.
func (m *Manager) Add(name string, phase int, model PDSS) {
	m.names = append(m.names, name)
	m.phases = append(m.phases, phase)
	m.models = append(m.models, model)
}

// Len is the number of registered species.
func (m *Manager) Len() int { return len(m.models) }

// UpdateStandardStates implements equilib.StandardStateProvider.
func (m *Manager) UpdateStandardStates(T, P float64, muSS, vSS []float64) error {
	if len(muSS) != len(m.models) || len(vSS) != len(m.models) {
		return fmt.Errorf("thermo: %d species registered but vectors have length %d",
			len(m.models), len(muSS))
	}
	for i, p := range m.models {
		muSS[i] = p.MuRT(T, P, m.Pref)
		vSS[i] = p.MolarVolume(T, P)
	}
	return nil
}

// Properties implements equilib.PropertyEvaluator: ideal mixture
// enthalpy, entropy, heat capacity and volume at composition n [kmol].
// The entropy includes the ideal entropy of mixing within each
// multispecies phase; excess properties of nonideal solutions are not
// included.
func (m *Manager) Properties(T, P float64, n []float64) (equilib.Props, error) {
	if len(n) != len(m.models) {
		return equilib.Props{}, fmt.Errorf("thermo: %d species registered but composition has length %d",
			len(m.models), len(n))
	}
	rt := rPerKmol * T

	var pr equilib.Props
	phaseTot := map[int]float64{}
	for i := range m.models {
		phaseTot[m.phases[i]] += n[i]
	}
	phaseCount := map[int]int{}
	for _, p := range m.phases {
		phaseCount[p]++
	}
	for i, p := range m.models {
		if n[i] == 0 {
			continue
		}
		pr.H += n[i] * p.EnthalpyRT(T, P, m.Pref) * rt
		pr.Cp += n[i] * p.CpR(T) * rPerKmol
		pr.V += n[i] * p.MolarVolume(T, P)
		s := p.EntropyR(T, P, m.Pref)
		if tot := phaseTot[m.phases[i]]; phaseCount[m.phases[i]] > 1 && tot > 0 {
			if x := n[i] / tot; x > 0 {
				s -= math.Log(x)
			}
		}
		pr.S += n[i] * s * rPerKmol
	}
	return pr, nil
}
