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

// Seed size, relative to the total mole number, for a species reborn in
// a live multispecies phase.
const birthSeed = 1e-10

// Relative phase-total cutoff below which a multispecies phase is
// treated as dead.
const phaseCutoff = 1e-13

// Step return codes.
const (
	stepNormal       = 0 // normal return
	stepZeroedNoncmp = 1 // a single-species-phase noncomponent was zeroed
	stepZeroedComp   = 2 // a component was zeroed; the basis must be rebuilt
)

// rxnStepSizes computes a Newton step for every formation reaction from
// the diagonal of the Hessian, with damping that keeps the components
// nonnegative. Reactions entirely among single-species phases have a
// singular diagonal; for those the step is the discrete one that zeroes
// whichever participant runs out first, the corresponding phase dies,
// and the return code reports whether a basis rebuild is required.
func (s *solver) rxnStepSizes() int {
	ntot := s.totalMoles()
	for r, k := range s.noncomps {
		s.dn[r] = 0
		sp := &s.sys.Species[k]
		if sp.Kind == UnknownVoltage || s.status[k] == StatusZeroedPhase {
			continue
		}
		kPhase := sp.Phase
		single := s.sys.Phases[kPhase].SingleSpecies

		if s.n[k] == 0 && !single {
			// Multispecies phase with this species at zero. A sufficiently
			// negative ΔG makes it come alive with a small positive seed.
			if s.dg[r] < -s.opts.PhaseBirthThreshold {
				if s.status[k] == StatusZeroedStoich {
					s.dbg.printf(2, "%s held at zero by stoich/phase-pop logic despite ΔG=%.3e",
						sp.Name, s.dg[r])
					continue
				}
				if s.tPhase[kPhase]/math.Max(ntot, 1e-300) > phaseCutoff {
					s.dn[r] = ntot * birthSeed
				} else {
					nspPhase := float64(len(s.sys.Phases[kPhase].Species))
					s.dn[r] = ntot * 10 * phaseCutoff / nspPhase
				}
				s.dbg.printf(2, "%s born again, ΔG=%.3e step=%g", sp.Name, s.dg[r], s.dn[r])
			}
			continue
		}

		// Superconverged reactions are left alone.
		if math.Abs(s.dg[r]) <= s.tolMajor*s.tolMajor {
			continue
		}
		// Minor species converge on their own equilibrium: the exponential
		// update n·(e^{−ΔG} − 1) moves them toward ΔG = 0 from either side
		// and cannot push the mole number negative.
		if s.status[k] == StatusMinor {
			dg := s.dg[r]
			if dg > 25 {
				dg = 25
			} else if dg < -25 {
				dg = -25
			}
			s.dn[r] = s.dampToComponents(r, s.n[k]*math.Expm1(-dg))
			continue
		}
		// Zeroed species are only ever stepped downhill.
		if s.status[k] != StatusMajor && s.dg[r] >= 0 {
			continue
		}

		// Diagonal of the Hessian of G in the reaction extent.
		var h float64
		if !single {
			h = 1 / s.n[k]
		}
		for j, c := range s.comps {
			if s.sys.Phases[s.sys.Species[c].Phase].SingleSpecies {
				continue
			}
			if s.n[c] > 0 {
				h += s.stoich[r][j] * s.stoich[r][j] / s.n[c]
			}
		}
		for p := range s.sys.Phases {
			if s.sys.Phases[p].SingleSpecies {
				continue
			}
			if s.tPhase[p] > 0 {
				h -= s.dnPhase[r][p] * s.dnPhase[r][p] / s.tPhase[p]
			}
		}

		if h != 0 {
			if s.haveJac {
				h = s.hessianDiagAdjust(r, h)
			}
			dx := s.dampToComponents(r, -s.dg[r]/h)
			// The species itself may not go negative either.
			if -dx > s.n[k] {
				dx = -s.n[k]
			}
			s.dn[r] = dx
			continue
		}

		// Reaction entirely among single-species phases: follow the
		// reaction to whichever species zeroes first and delete its phase.
		var dss float64
		del := k
		if s.dg[r] > 0 {
			dss = s.n[k]
			for j, c := range s.comps {
				if s.stoich[r][j] > 0 {
					if xx := s.n[c] / s.stoich[r][j]; xx < dss {
						dss = xx
						del = c
					}
				}
			}
			dss = -dss
		} else {
			dss = 1e10
			for j, c := range s.comps {
				if s.stoich[r][j] < 0 {
					if xx := -s.n[c] / s.stoich[r][j]; xx < dss {
						dss = xx
						del = c
					}
				}
			}
			// No component is consumed, so nothing bounds the extent; leave
			// the species where it is rather than applying the sentinel.
			if dss == 1e10 {
				continue
			}
		}
		if dss == 0 {
			continue
		}
		s.n[k] += dss
		s.tPhase[sp.Phase] += dss
		for j, c := range s.comps {
			s.n[c] += dss * s.stoich[r][j]
			s.tPhase[s.sys.Species[c].Phase] += dss * s.stoich[r][j]
		}
		s.n[del] = 0
		s.tPhase[s.sys.Species[del].Phase] = 0
		s.dbg.printf(2, "zeroing single-species phase of %s", s.sys.Species[del].Name)
		if del == k {
			s.status[k] = StatusZeroedSS
			return stepZeroedNoncmp
		}
		s.status[del] = StatusZeroedSS
		return stepZeroedComp
	}
	return stepNormal
}

// dampToComponents shrinks a candidate step so that no component mole
// number goes negative.
func (s *solver) dampToComponents(r int, dx float64) float64 {
	for j, c := range s.comps {
		sc := s.stoich[r][j]
		if sc == 0 {
			continue
		}
		if -sc*dx > s.n[c] {
			if s.n[c] > 0 {
				dx = -s.n[c] / sc
			} else {
				dx = 0
			}
		}
	}
	return dx
}

// hessianDiagAdjust corrects the ideal Hessian diagonal for the
// dependence of the activity coefficients on the mole numbers. The
// diagonal may grow without bound but may shrink to no less than a third
// of its ideal value, so it stays positive.
func (s *solver) hessianDiagAdjust(r int, ideal float64) float64 {
	if ideal <= 0 {
		return ideal
	}
	corr := s.hessianActCoeffDiag(r)
	switch {
	case corr >= 0:
		return ideal + corr
	case math.Abs(corr) < 0.6666*ideal:
		return ideal + corr
	default:
		return ideal - 0.6666*ideal
	}
}

// hessianActCoeffDiag is the activity-coefficient contribution to the
// Hessian diagonal for reaction r, assembled from the phase-local
// ∂ ln γ/∂ n blocks.
func (s *solver) hessianActCoeffDiag(r int) float64 {
	k := s.noncomps[r]
	kPhase := s.sys.Species[k].Phase
	h := s.dLnGamma.At(k, k)
	for j, cj := range s.comps {
		jPhase := s.sys.Species[cj].Phase
		if s.sys.Phases[jPhase].SingleSpecies {
			continue
		}
		for l, cl := range s.comps {
			if s.sys.Species[cl].Phase == jPhase {
				h += s.stoich[r][l] * s.stoich[r][j] * s.dLnGamma.At(cl, cj)
			}
		}
		if kPhase == jPhase {
			h += s.stoich[r][j] * (s.dLnGamma.At(k, cj) + s.dLnGamma.At(cj, k))
		}
	}
	return h
}
