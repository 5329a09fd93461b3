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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// chemEquilApplicable reports whether the fast element-potential solver
// can handle the system: a single ideal gas phase and ordinary
// mole-number unknowns only.
func chemEquilApplicable(sys *System) bool {
	if len(sys.Phases) != 1 {
		return false
	}
	ph := &sys.Phases[0]
	if !ph.GasPhase || ph.SingleSpecies {
		return false
	}
	if !ph.IdealSolution && ph.Activity != nil {
		return false
	}
	for i := range sys.Species {
		if sys.Species[i].Kind == UnknownVoltage {
			return false
		}
	}
	return true
}

// chemEquilTP solves single-gas-phase equilibrium by the
// element-potential method: every mole fraction is an exponential of the
// element potentials, xᵢ = exp(−µ°ᵢ/RT + Σⱼ λⱼ aᵢⱼ), and a damped
// Newton iteration drives the element abundances and the Σx = 1 closure
// to their targets. Much faster than VCS when it works; the Auto solver
// falls back to VCS when it does not.
func chemEquilTP(sys *System, T, P float64, opts *Options) (int, error) {
	if !chemEquilApplicable(sys) {
		return 0, &SolveError{Kind: ErrInvalidInput,
			Message: "element-potential solver requires a single ideal gas phase"}
	}
	return chemEquilRun(sys, T, P, opts, opts.Rtol, opts.MaxInnerIter)
}

func chemEquilRun(sys *System, T, P float64, opts *Options, rtol float64, maxIter int) (int, error) {
	dbg := newDiag(opts)
	nsp := len(sys.Species)

	s := newSolver(sys, T, P, opts)
	if err := s.analyzeElements(); err != nil {
		return 0, err
	}
	if err := s.projectFeasible(); err != nil {
		return 0, err
	}
	m := len(s.activeElems)

	mu0 := make([]float64, nsp)
	v0 := make([]float64, nsp)
	if err := sys.Thermo.UpdateStandardStates(T, P, mu0, v0); err != nil {
		return 0, providerErr("", "standard states: "+err.Error())
	}
	for i, v := range mu0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, providerErr("", "non-finite standard-state potential for "+sys.Species[i].Name)
		}
	}

	a := func(i, j int) float64 { return sys.Formula[i][s.activeElems[j]] }
	goals := make([]float64, m)
	for j := 0; j < m; j++ {
		goals[j] = s.goals[s.activeElems[j]]
	}
	maxGoal := floats.Norm(goals, math.Inf(1))

	// Initial element potentials: weighted least squares of µ° over the
	// element vectors, weighted by the (projected) starting composition.
	ntot := floats.Sum(s.n)
	if ntot <= 0 {
		return 0, &SolveError{Kind: ErrInvalidInput, Message: "no moles in the system"}
	}
	lam := make([]float64, m)
	{
		aw := mat.NewDense(nsp, m, nil)
		bw := mat.NewVecDense(nsp, nil)
		for i := 0; i < nsp; i++ {
			w := math.Sqrt(s.n[i]/ntot + 1e-10)
			for j := 0; j < m; j++ {
				aw.Set(i, j, w*a(i, j))
			}
			bw.SetVec(i, w*mu0[i])
		}
		var l mat.VecDense
		if err := l.SolveVec(aw, bw); err == nil {
			for j := 0; j < m; j++ {
				lam[j] = l.AtVec(j)
			}
		}
	}
	lnNtot := math.Log(ntot)

	x := make([]float64, nsp)
	n := make([]float64, nsp)
	jac := mat.NewDense(m+1, m+1, nil)
	res := mat.NewVecDense(m+1, nil)
	var step mat.VecDense

	evalX := func() bool {
		for i := 0; i < nsp; i++ {
			e := -mu0[i]
			for j := 0; j < m; j++ {
				e += lam[j] * a(i, j)
			}
			if e > 300 {
				return false // diverging; let VCS handle it
			}
			x[i] = math.Exp(e)
			n[i] = x[i] * math.Exp(lnNtot)
		}
		return true
	}

	for it := 1; it <= maxIter; it++ {
		if !evalX() {
			return it, &SolveError{Kind: ErrNonConvergence, Iterations: it,
				Message: "element-potential iteration diverged"}
		}
		sumX := floats.Sum(x)
		worst := 0.0
		for j := 0; j < m; j++ {
			var f float64
			for i := 0; i < nsp; i++ {
				f += a(i, j) * n[i]
			}
			res.SetVec(j, goals[j]-f)
			if ab := math.Abs(goals[j] - f); ab > worst {
				worst = ab
			}
		}
		res.SetVec(m, 1-sumX)
		if worst <= rtol*(maxGoal+1) && math.Abs(1-sumX) <= rtol*10 {
			copy(sys.Moles, n)
			rt := rtMult(opts.Units, T)
			for i := 0; i < nsp; i++ {
				mu := mu0[i] + math.Log(math.Max(x[i], xFloor))
				sys.Mu[i] = mu * rt
				sys.Status[i] = StatusMajor
			}
			sys.T, sys.P = T, P
			sys.Iterations = it
			dbg.printf(1, "element-potential solver converged in %d iterations", it)
			return it, nil
		}

		for j := 0; j < m; j++ {
			for l := 0; l < m; l++ {
				var v float64
				for i := 0; i < nsp; i++ {
					v += a(i, j) * a(i, l) * n[i]
				}
				jac.Set(j, l, v)
			}
			var v float64
			for i := 0; i < nsp; i++ {
				v += a(i, j) * n[i]
			}
			jac.Set(j, m, v)
		}
		for l := 0; l < m; l++ {
			var v float64
			for i := 0; i < nsp; i++ {
				v += a(i, l) * x[i]
			}
			jac.Set(m, l, v)
		}
		jac.Set(m, m, 0)

		if err := step.SolveVec(jac, res); err != nil {
			return it, &SolveError{Kind: ErrNonConvergence, Iterations: it,
				Message: "singular Jacobian in element-potential iteration"}
		}
		// Damp large excursions of the potentials.
		damp := 1.0
		for j := 0; j <= m; j++ {
			if ab := math.Abs(step.AtVec(j)); ab*damp > 10 {
				damp = 10 / ab
			}
		}
		for j := 0; j < m; j++ {
			lam[j] += damp * step.AtVec(j)
		}
		lnNtot += damp * step.AtVec(m)
	}
	return maxIter, &SolveError{Kind: ErrNonConvergence, Iterations: maxIter,
		Message: "element-potential solver exhausted its iterations"}
}

// seedFromEstimate replaces the starting composition with a coarse
// ideal-gas estimate when the problem shape allows it. Failure is
// harmless; VCS simply starts from the caller's guess.
func seedFromEstimate(sys *System, T, P float64, opts *Options) {
	if !chemEquilApplicable(sys) {
		return
	}
	saved := append([]float64(nil), sys.Moles...)
	if _, err := chemEquilRun(sys, T, P, opts, 1e-3, 100); err != nil {
		copy(sys.Moles, saved)
		return
	}
	newDiag(opts).printf(1, "seeded composition from ideal-gas estimate")
}
