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

	"gonum.org/v1/gonum/mat"
)

// Floor on the mole-fraction argument of the logarithm, so that zeroed
// species still get a finite (large negative activity) chemical
// potential for the rebirth test.
const xFloor = 1e-200

// updatePhaseTotals recomputes the phase totals from the working mole
// numbers.
func (s *solver) updatePhaseTotals() {
	for p := range s.tPhase {
		tot := s.inert[p]
		for _, i := range s.sys.Phases[p].Species {
			if s.sys.Species[i].Kind == UnknownVoltage {
				continue
			}
			tot += s.n[i]
		}
		s.tPhase[p] = tot
	}
}

// totalMoles is the current total mole number over all phases.
func (s *solver) totalMoles() float64 {
	var t float64
	for p := range s.tPhase {
		t += s.tPhase[p]
	}
	return t
}

// updateActivity refreshes ln γ for every nonideal multispecies phase,
// and the activity-coefficient Jacobian when the Hessian correction is
// enabled. Ideal and single-species phases keep ln γ = 0.
func (s *solver) updateActivity() error {
	s.haveJac = false
	for p := range s.sys.Phases {
		ph := &s.sys.Phases[p]
		if ph.SingleSpecies || ph.IdealSolution || ph.Activity == nil {
			for _, i := range ph.Species {
				s.lnGamma[i] = 0
			}
			continue
		}
		local := s.gatherPhase(p, s.n)
		lg := make([]float64, len(local))
		if err := ph.Activity.UpdateLnGamma(local, lg); err != nil {
			return providerErr(ph.Name, "activity model: "+err.Error())
		}
		for k, i := range ph.Species {
			if math.IsNaN(lg[k]) || math.IsInf(lg[k], 0) {
				return providerErr(ph.Name, "non-finite ln γ for "+s.sys.Species[i].Name)
			}
			s.lnGamma[i] = lg[k]
		}
		if !s.opts.UseActivityJacobian {
			continue
		}
		jacModel, ok := ph.Activity.(ActivityJacobian)
		if !ok {
			continue
		}
		jac := mat.NewDense(len(local), len(local), nil)
		if err := jacModel.UpdateDLnGammaDn(local, jac); err != nil {
			return providerErr(ph.Name, "activity Jacobian: "+err.Error())
		}
		for a, ia := range ph.Species {
			for b, ib := range ph.Species {
				v := jac.At(a, b)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return providerErr(ph.Name, "non-finite activity Jacobian")
				}
				s.dLnGamma.Set(ia, ib, v)
			}
		}
		s.haveJac = true
	}
	return nil
}

// gatherPhase extracts the phase-local mole numbers from a full-length
// vector, ordered like Phase.Species.
func (s *solver) gatherPhase(p int, n []float64) []float64 {
	ids := s.sys.Phases[p].Species
	local := make([]float64, len(ids))
	for k, i := range ids {
		local[k] = n[i]
	}
	return local
}

// chemPotPhase writes the dimensionless chemical potentials of the
// species in phase p into mu, evaluated at the composition n with phase
// total tph and activity coefficients lnGamma.
//
// µᵢ/RT = µ°ᵢ/RT + ln(nᵢ/Tⱼ) + ln γᵢ + (F/RT)·zᵢ·φⱼ, except that a
// single-species phase contributes its standard state only. A dead
// multispecies phase is evaluated at the uniform composition it would be
// born with.
func (s *solver) chemPotPhase(p int, n []float64, tph float64, lnGamma, mu []float64) {
	ph := &s.sys.Phases[p]
	if ph.SingleSpecies {
		i := ph.Species[0]
		mu[i] = s.mu0[i] + s.faraday*s.sys.Species[i].Charge*ph.ElectricPotential
		return
	}
	for _, i := range ph.Species {
		var x float64
		if tph > 0 {
			x = n[i] / tph
		} else {
			x = 1 / float64(len(ph.Species))
		}
		if x < xFloor {
			x = xFloor
		}
		mu[i] = s.mu0[i] + math.Log(x) + lnGamma[i] +
			s.faraday*s.sys.Species[i].Charge*ph.ElectricPotential
	}
}

// chemPotAll evaluates the chemical potentials of every species at the
// committed state.
func (s *solver) chemPotAll() {
	for p := range s.sys.Phases {
		s.chemPotPhase(p, s.n, s.tPhase[p], s.lnGamma, s.mu)
	}
}

// computeDeltaG fills the per-reaction ΔG/RT vector:
// ΔGᵣ = µₖ + Σⱼ νᵣⱼ µⱼ over the components.
func (s *solver) computeDeltaG() {
	for r, k := range s.noncomps {
		dg := s.mu[k]
		for j, c := range s.comps {
			dg += s.stoich[r][j] * s.mu[c]
		}
		s.dg[r] = dg
	}
}

// elementResidualNorm returns the max-norm of E·n − b over all element
// constraints, in scaled units.
func (s *solver) elementResidualNorm() float64 {
	var worst float64
	for j := range s.sys.Elements {
		var sum float64
		for i := 0; i < s.nsp; i++ {
			if s.sys.Species[i].Kind == UnknownVoltage {
				continue
			}
			sum += s.sys.Formula[i][j] * s.n[i]
		}
		if r := math.Abs(sum - s.goals[j]); r > worst {
			worst = r
		}
	}
	return worst
}
