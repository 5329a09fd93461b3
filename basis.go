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
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Threshold below which a component's mole number forces a basis
// reselection.
const componentCutoff = 1e-13

// analyzeElements finds a maximal linearly independent subset of the
// element-constraint rows, preserving input order. Dependent rows must
// have goals consistent with the rows they depend on; otherwise the
// constraint set is infeasible. Dependent rows stay in the residual
// checks but take no part in basis selection.
func (s *solver) analyzeElements() error {
	nsp := s.nsp
	var active []int
	var basisRows []*mat.VecDense // element row vectors over species

	row := func(j int) *mat.VecDense {
		v := mat.NewVecDense(nsp, nil)
		for i := 0; i < nsp; i++ {
			if s.sys.Species[i].Kind == UnknownVoltage {
				continue
			}
			v.SetVec(i, s.sys.Formula[i][j])
		}
		return v
	}

	maxGoal := 0.0
	for j := range s.sys.Elements {
		if g := math.Abs(s.sys.Elements[j].Goal); g > maxGoal {
			maxGoal = g
		}
	}

	for j := range s.sys.Elements {
		r := row(j)
		if len(active) == 0 {
			if mat.Norm(r, 2) > 0 {
				active = append(active, j)
				basisRows = append(basisRows, r)
			} else if math.Abs(s.sys.Elements[j].Goal) > s.opts.Rtol*(maxGoal+1) {
				return &SolveError{Kind: ErrInfeasibleElements,
					Message: "element " + s.sys.Elements[j].Name + " appears in no species but has a nonzero goal"}
			}
			continue
		}
		// Least-squares fit of this row onto the active rows; a
		// significant residual means it is independent.
		a := mat.NewDense(nsp, len(active), nil)
		for k, br := range basisRows {
			for i := 0; i < nsp; i++ {
				a.Set(i, k, br.AtVec(i))
			}
		}
		var c mat.VecDense
		err := c.SolveVec(a, r)
		norm := mat.Norm(r, math.Inf(1))
		indep := err != nil
		if !indep {
			var fit mat.VecDense
			fit.MulVec(a, &c)
			var resid mat.VecDense
			resid.SubVec(r, &fit)
			indep = mat.Norm(&resid, math.Inf(1)) > 1e-10*(norm+1)
		}
		if indep {
			active = append(active, j)
			basisRows = append(basisRows, r)
			continue
		}
		// Dependent row: its goal must follow from the active goals.
		want := 0.0
		for k, aj := range active {
			want += c.AtVec(k) * s.sys.Elements[aj].Goal
		}
		if math.Abs(s.sys.Elements[j].Goal-want) > s.opts.Rtol*(maxGoal+1) {
			return &SolveError{Kind: ErrInfeasibleElements,
				Message: "goal for element " + s.sys.Elements[j].Name + " contradicts the other constraints"}
		}
		s.dbg.printf(2, "element constraint %s is dependent; excluded from basis selection",
			s.sys.Elements[j].Name)
	}
	if len(active) == 0 {
		return &SolveError{Kind: ErrRankDeficient, Message: "element matrix has rank zero"}
	}
	s.activeElems = active
	return nil
}

// selectBasis picks the component species and rebuilds the
// stoichiometric matrix of the noncomponent formation reactions. It is
// called on the first iteration and whenever a component is exhausted.
func (s *solver) selectBasis() error {
	m := len(s.activeElems)

	// Preference order: species that use elements with nonzero goals come
	// first, then by current mole number, then by original index.
	maxGoal := 0.0
	for _, j := range s.activeElems {
		if g := math.Abs(s.goals[j]); g > maxGoal {
			maxGoal = g
		}
	}
	majorUser := func(i int) bool {
		for _, j := range s.activeElems {
			if s.sys.Formula[i][j] != 0 && math.Abs(s.goals[j]) > 1e-10*(maxGoal+1) {
				return true
			}
		}
		return false
	}
	cand := make([]int, 0, s.nsp)
	for i := 0; i < s.nsp; i++ {
		if s.sys.Species[i].Kind == UnknownVoltage || s.status[i] == StatusDeleted {
			continue
		}
		cand = append(cand, i)
	}
	sort.SliceStable(cand, func(a, b int) bool {
		ia, ib := cand[a], cand[b]
		ua, ub := majorUser(ia), majorUser(ib)
		if ua != ub {
			return ua
		}
		if s.n[ia] != s.n[ib] {
			return s.n[ia] > s.n[ib]
		}
		return ia < ib
	})

	// Greedy pick: a candidate joins the basis when its element vector is
	// linearly independent of those already picked, judged by the
	// residual left after projecting onto the picked vectors.
	comps := make([]int, 0, m)
	picked := make([][]float64, 0, m) // orthogonalized element vectors
	elemVec := func(i int) []float64 {
		v := make([]float64, m)
		for k, j := range s.activeElems {
			v[k] = s.sys.Formula[i][j]
		}
		return v
	}
	for _, i := range cand {
		if len(comps) == m {
			break
		}
		v := elemVec(i)
		norm0 := vecNorm(v)
		if norm0 == 0 {
			continue
		}
		for _, q := range picked {
			d := dot(v, q)
			for k := range v {
				v[k] -= d * q[k]
			}
		}
		if vecNorm(v) <= 1e-10*norm0 {
			continue
		}
		nrm := vecNorm(v)
		for k := range v {
			v[k] /= nrm
		}
		picked = append(picked, v)
		comps = append(comps, i)
	}
	if len(comps) < m {
		return &SolveError{Kind: ErrRankDeficient,
			Message: "fewer independent component species than element constraints"}
	}

	// Factorize the components-to-elements matrix once; every formation
	// reaction is a solve against it.
	c := mat.NewDense(m, m, nil)
	for r, j := range s.activeElems {
		for col, sp := range comps {
			c.Set(r, col, s.sys.Formula[sp][j])
		}
	}
	var lu mat.LU
	lu.Factorize(c)
	s.basisLU = &lu

	s.comps = comps
	for i := range s.isComp {
		s.isComp[i] = false
	}
	for _, i := range comps {
		s.isComp[i] = true
	}
	s.noncomps = s.noncomps[:0]
	for i := 0; i < s.nsp; i++ {
		if s.isComp[i] || s.status[i] == StatusDeleted || s.sys.Species[i].Kind == UnknownVoltage {
			continue
		}
		s.noncomps = append(s.noncomps, i)
	}
	nrxn := len(s.noncomps)

	s.stoich = alloc2(nrxn, m)
	s.dnPhase = alloc2(nrxn, s.nphase)
	s.phasePart = allocInt2(nrxn, s.nphase)
	rhs := mat.NewVecDense(m, nil)
	var x mat.VecDense
	for r, k := range s.noncomps {
		for row, j := range s.activeElems {
			rhs.SetVec(row, s.sys.Formula[k][j])
		}
		if err := s.basisLU.SolveVecTo(&x, false, rhs); err != nil {
			return &SolveError{Kind: ErrRankDeficient,
				Message: "singular component basis while forming reaction for " + s.sys.Species[k].Name}
		}
		// A unit formation step creates one mole of species k and destroys
		// x_j moles of each component, so the stored coefficient is -x_j.
		for j := 0; j < m; j++ {
			v := -x.AtVec(j)
			if math.Abs(v) < 1e-13 {
				v = 0
			}
			s.stoich[r][j] = v
			s.dnPhase[r][s.sys.Species[comps[j]].Phase] += v
			if v != 0 {
				s.phasePart[r][s.sys.Species[comps[j]].Phase]++
			}
		}
		s.dnPhase[r][s.sys.Species[k].Phase]++
		s.phasePart[r][s.sys.Species[k].Phase]++
	}

	s.dg = make([]float64, nrxn)
	s.dn = make([]float64, nrxn)
	s.basisDirty = false

	if s.dbg.on(2) {
		names := make([]string, m)
		for j, sp := range comps {
			names[j] = s.sys.Species[sp].Name
		}
		s.dbg.printf(2, "component basis rebuilt: %v", names)
	}
	if s.dbg.on(5) {
		for r, k := range s.noncomps {
			s.dbg.printf(5, "rxn %d (%s): stoich=%v dnPhase=%v",
				r, s.sys.Species[k].Name, s.stoich[r], s.dnPhase[r])
		}
	}
	return nil
}

// componentExhausted reports whether any component has dropped below the
// reselection cutoff.
func (s *solver) componentExhausted() bool {
	for _, j := range s.comps {
		if s.n[j] < componentCutoff {
			s.dbg.printf(2, "component %s exhausted (n=%g); basis marked dirty",
				s.sys.Species[j].Name, s.n[j])
			return true
		}
	}
	return false
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func vecNorm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

func allocInt2(r, c int) [][]int {
	backing := make([]int, r*c)
	out := make([][]int, r)
	for i := range out {
		out[i] = backing[i*c : (i+1)*c : (i+1)*c]
	}
	return out
}

func alloc2(r, c int) [][]float64 {
	backing := make([]float64, r*c)
	out := make([][]float64, r)
	for i := range out {
		out[i] = backing[i*c : (i+1)*c : (i+1)*c]
	}
	return out
}
