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

// Mole-fraction thresholds for the major/minor split. Promotion and
// demotion use different values so a species hovering near the boundary
// does not flap between classes.
const (
	majorPromote = 1e-3
	majorDemote  = 5e-4
)

// classify assigns every species its status from scratch: after basis
// selection and at solver startup.
func (s *solver) classify() {
	ntot := s.totalMoles()
	for i := range s.isComp {
		if s.status[i] == StatusDeleted {
			continue
		}
		if s.isComp[i] {
			s.status[i] = StatusComponent
			continue
		}
		s.status[i] = s.freshStatus(i, ntot, false)
	}
}

// reclassify updates species statuses after a round of accepted steps,
// honoring the promote/demote hysteresis, and kills multispecies phases
// whose totals have collapsed.
func (s *solver) reclassify() {
	ntot := s.totalMoles()

	for p := range s.sys.Phases {
		ph := &s.sys.Phases[p]
		if ph.SingleSpecies {
			continue
		}
		if s.tPhase[p] < phaseCutoff*ntot && s.tPhase[p] > 0 {
			// The phase is dead. Zero all of its species together.
			s.dbg.printf(2, "phase %s total %g below cutoff; zeroing", ph.Name, s.tPhase[p])
			for _, i := range ph.Species {
				if s.sys.Species[i].Kind == UnknownVoltage {
					continue
				}
				s.n[i] = 0
				if !s.isComp[i] {
					s.status[i] = StatusZeroedPhase
				}
			}
			s.tPhase[p] = s.inert[p]
			if s.hasCompInPhase(p) {
				s.basisDirty = true
			}
		}
	}

	for i := 0; i < s.nsp; i++ {
		if s.isComp[i] || s.status[i] == StatusDeleted ||
			s.sys.Species[i].Kind == UnknownVoltage {
			continue
		}
		s.status[i] = s.freshStatus(i, ntot, true)
	}
}

// freshStatus derives the status of noncomponent i from its current mole
// number. With hysteresis enabled the previous status biases the
// major/minor boundary.
func (s *solver) freshStatus(i int, ntot float64, hysteresis bool) SpeciesStatus {
	p := s.sys.Species[i].Phase
	ph := &s.sys.Phases[p]
	if ph.SingleSpecies {
		if s.n[i] <= 0 {
			return StatusZeroedSS
		}
		return StatusMajor
	}
	if s.tPhase[p] <= phaseCutoff*ntot {
		if s.status[i] == StatusZeroedStoich {
			return StatusZeroedStoich
		}
		return StatusZeroedPhase
	}
	if s.n[i] <= 0 {
		if s.status[i] == StatusZeroedStoich {
			return StatusZeroedStoich
		}
		return StatusMinor
	}
	x := s.n[i] / s.tPhase[p]
	threshold := majorPromote
	if hysteresis && s.status[i] == StatusMajor {
		threshold = majorDemote
	}
	if x > threshold {
		return StatusMajor
	}
	return StatusMinor
}

func (s *solver) hasCompInPhase(p int) bool {
	for _, c := range s.comps {
		if s.sys.Species[c].Phase == p {
			return true
		}
	}
	return false
}
