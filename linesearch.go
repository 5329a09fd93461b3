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

// Maximum number of step halvings in the line search.
const lineSearchMaxIts = 10

// deltaGRxnAt recomputes ΔG/RT of reaction r at the composition n with
// phase totals tph. Only phases with species taking part in the reaction
// have their activity coefficients and chemical potentials refreshed.
// Participation is judged by the species count, not by dnPhase: the net
// phase change cancels to zero for mole-balanced reactions. lnG and mu
// are scratch vectors seeded from the committed state.
func (s *solver) deltaGRxnAt(r int, n, tph, lnG, mu []float64) (float64, error) {
	k := s.noncomps[r]
	for p := range s.sys.Phases {
		if s.phasePart[r][p] == 0 {
			continue
		}
		ph := &s.sys.Phases[p]
		if !ph.SingleSpecies && !ph.IdealSolution && ph.Activity != nil {
			local := s.gatherPhase(p, n)
			lg := make([]float64, len(local))
			if err := ph.Activity.UpdateLnGamma(local, lg); err != nil {
				return 0, providerErr(ph.Name, "activity model: "+err.Error())
			}
			for idx, i := range ph.Species {
				lnG[i] = lg[idx]
			}
		}
		s.chemPotPhase(p, n, tph[p], lnG, mu)
	}
	dg := mu[k]
	for j, c := range s.comps {
		dg += s.stoich[r][j] * mu[c]
	}
	return dg, nil
}

// trialStep loads the line-search buffers with the committed state plus
// a step dx along reaction r.
func (s *solver) trialStep(r, k int, dx float64) {
	copy(s.nTrial, s.n)
	copy(s.tPhaseTrial, s.tPhase)
	copy(s.lnGammaTrial, s.lnGamma)
	copy(s.muTrial, s.mu)
	s.nTrial[k] = math.Max(0, s.n[k]+dx)
	for j, c := range s.comps {
		s.nTrial[c] = math.Max(0, s.n[c]+s.stoich[r][j]*dx)
	}
	for p := range s.tPhaseTrial {
		if s.dnPhase[r][p] != 0 {
			s.tPhaseTrial[p] = math.Max(0, s.tPhase[p]+s.dnPhase[r][p]*dx)
		}
	}
}

// lineSearch reduces the candidate step for reaction r so that the
// reaction's ΔG does not cross zero prematurely. It works entirely in
// the trial buffers; committed state is untouched.
func (s *solver) lineSearch(r int, dxOrig float64) (float64, error) {
	if dxOrig == 0 {
		return 0, nil
	}
	k := s.noncomps[r]

	copy(s.lnGammaTrial, s.lnGamma)
	copy(s.muTrial, s.mu)
	dgOrig, err := s.deltaGRxnAt(r, s.n, s.tPhase, s.lnGammaTrial, s.muTrial)
	if err != nil {
		return 0, err
	}
	// A step that would increase G is discarded outright.
	if dgOrig > 0 && dxOrig > 0 {
		return 0, nil
	}
	if dgOrig < 0 && dxOrig < 0 {
		return 0, nil
	}
	if dgOrig == 0 {
		return 0, nil
	}
	forig := math.Abs(dgOrig) + 1e-15

	s.trialStep(r, k, dxOrig)
	dg1, err := s.deltaGRxnAt(r, s.nTrial, s.tPhaseTrial, s.lnGammaTrial, s.muTrial)
	if err != nil {
		return 0, err
	}
	// No sign switch over the full step: the whole step is downhill.
	if dg1*dgOrig > 0 {
		return dxOrig, nil
	}
	// ΔG crossed zero but shrank appreciably: take the interpolated root.
	if math.Abs(dg1) < 0.8*forig {
		if dg1*dgOrig < 0 {
			slope := (dg1 - dgOrig) / dxOrig
			return -dgOrig / slope, nil
		}
		return dxOrig, nil
	}

	dx := dxOrig
	for its := 0; its < lineSearchMaxIts; its++ {
		dx *= 0.5
		s.trialStep(r, k, dx)
		dg, err := s.deltaGRxnAt(r, s.nTrial, s.tPhaseTrial, s.lnGammaTrial, s.muTrial)
		if err != nil {
			return 0, err
		}
		if dg*dgOrig > 0 {
			return dx, nil
		}
		if math.Abs(dg)/forig < 1-0.1*dx/dxOrig {
			if dg*dgOrig < 0 {
				slope := (dg - dgOrig) / dx
				dx = -dgOrig / slope
			}
			return dx, nil
		}
	}
	s.dbg.printf(2, "line search on %s reduced step from %g to %g at iteration cap",
		s.sys.Species[k].Name, dxOrig, dx)
	return dx, nil
}
