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

import "github.com/sirupsen/logrus"

// UnitSystem selects the dimensional unit system for chemical
// potentials.
type UnitSystem int

const (
	// UnitsMKS is J/kmol (the default).
	UnitsMKS UnitSystem = iota
	// UnitsKJMol is kJ/gmol.
	UnitsKJMol
	// UnitsKCalMol is kcal/gmol.
	UnitsKCalMol
	// UnitsKelvin expresses energies as temperatures (µ/R).
	UnitsKelvin
	// UnitsDimensionless is µ/RT.
	UnitsDimensionless
)

// SolverChoice selects the equilibrium algorithm.
type SolverChoice int

const (
	// SolverAuto tries the fast single-phase element-potential solver
	// first and escalates to the multiphase VCS solver on failure.
	SolverAuto SolverChoice = iota
	// SolverChemEquil forces the element-potential solver.
	SolverChemEquil
	// SolverMultiPhaseVCS forces the VCS solver.
	SolverMultiPhaseVCS
)

// Options configures an equilibrate call. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// Rtol is the convergence tolerance on ΔG/RT per reaction and on the
	// element-abundance residuals.
	Rtol float64

	// MaxInnerIter bounds the Gibbs-minimization iterations at fixed
	// (T, P).
	MaxInnerIter int

	// MaxOuterIter bounds the outer Newton iterations of the state driver
	// for non-(T,P) property pairs.
	MaxOuterIter int

	// Solver selects the algorithm.
	Solver SolverChoice

	// UseActivityJacobian enables the activity-coefficient correction to
	// the Hessian diagonal for phases that provide a Jacobian.
	UseActivityJacobian bool

	// Units is the dimensional unit system for reported chemical
	// potentials.
	Units UnitSystem

	// LogLevel controls diagnostic verbosity, 0 (silent) through 5 (dump
	// the reaction matrix every iteration).
	LogLevel int

	// EstimateEquil seeds the solver from a coarse ideal-gas estimate
	// before running VCS.
	EstimateEquil bool

	// PhaseBirthThreshold is how negative a formation reaction's ΔG/RT
	// must be before a dead multispecies phase is reborn.
	PhaseBirthThreshold float64

	// Logger receives diagnostic output when LogLevel > 0. Nil suppresses
	// all output.
	Logger logrus.FieldLogger

	// Cancel, if non-nil, is polled once per outer iteration; returning
	// true aborts the solve with ErrCancelled.
	Cancel func() bool
}

// DefaultOptions returns the standard solver configuration.
func DefaultOptions() *Options {
	return &Options{
		Rtol:                1e-9,
		MaxInnerIter:        5000,
		MaxOuterIter:        100,
		Solver:              SolverAuto,
		UseActivityJacobian: true,
		Units:               UnitsMKS,
		PhaseBirthThreshold: 1e-4,
	}
}

func (o *Options) sanitized() (*Options, error) {
	if o == nil {
		return DefaultOptions(), nil
	}
	oo := *o
	if oo.Rtol <= 0 {
		oo.Rtol = 1e-9
	}
	if oo.MaxInnerIter <= 0 {
		oo.MaxInnerIter = 5000
	}
	if oo.MaxOuterIter <= 0 {
		oo.MaxOuterIter = 100
	}
	if oo.PhaseBirthThreshold <= 0 {
		oo.PhaseBirthThreshold = 1e-4
	}
	if oo.Units < UnitsMKS || oo.Units > UnitsDimensionless {
		return nil, &SolveError{Kind: ErrInvalidInput, Message: "unknown unit system"}
	}
	if oo.LogLevel < 0 || oo.LogLevel > 5 {
		return nil, &SolveError{Kind: ErrInvalidInput, Message: "log level must be in 0..5"}
	}
	return &oo, nil
}
