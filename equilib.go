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

// Package equilib computes multiphase chemical equilibrium by minimizing
// the total Gibbs free energy of a closed system subject to linear
// element-abundance constraints. The solver is a stoichiometric
// (reaction-basis) Villars–Cruise–Smith iteration: it selects a set of
// linearly independent component species, expresses every other species
// as a formation reaction from the components, and drives the ΔG of each
// formation reaction to zero with damped Newton steps, handling nonideal
// activity coefficients and the appearance and disappearance of phases
// along the way.
package equilib

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpeciesStatus classifies the role a species currently plays in the
// iteration.
type SpeciesStatus int

const (
	// StatusComponent marks one of the M basis species spanning element
	// space.
	StatusComponent SpeciesStatus = iota
	// StatusMajor marks a noncomponent with a significant mole fraction in
	// its phase; a Newton step is always taken for it.
	StatusMajor
	// StatusMinor marks a noncomponent below the major threshold; a step is
	// taken only when it reduces G further.
	StatusMinor
	// StatusZeroedSS marks a single-species phase currently at zero moles.
	// It may be reborn by a negative formation ΔG.
	StatusZeroedSS
	// StatusZeroedPhase marks a species in a multispecies phase whose phase
	// has been artificially zeroed.
	StatusZeroedPhase
	// StatusZeroedStoich marks a species held at zero by stoichiometric or
	// phase-pop logic despite a favorable ΔG.
	StatusZeroedStoich
	// StatusDeleted excludes a species from the iteration entirely.
	StatusDeleted
)

func (s SpeciesStatus) String() string {
	switch s {
	case StatusComponent:
		return "component"
	case StatusMajor:
		return "major"
	case StatusMinor:
		return "minor"
	case StatusZeroedSS:
		return "zeroed-ss"
	case StatusZeroedPhase:
		return "zeroed-phase"
	case StatusZeroedStoich:
		return "zeroed-stoich"
	case StatusDeleted:
		return "deleted"
	}
	return "unknown"
}

// UnknownKind distinguishes ordinary mole-number unknowns from species
// that carry a phase's electric potential.
type UnknownKind int

const (
	// UnknownMoleNumber is the normal case: the species unknown is its
	// mole number.
	UnknownMoleNumber UnknownKind = iota
	// UnknownVoltage marks a species whose unknown is the interfacial
	// voltage of its phase. Voltage species are exempt from mole-number
	// scaling and from reaction steps.
	UnknownVoltage
)

// ElemType is the kind of an element-abundance constraint row.
type ElemType int

const (
	// ElemAbsPos is an ordinary element whose total must be nonnegative.
	ElemAbsPos ElemType = iota
	// ElemElectronCharge tracks the electron content of charged species.
	ElemElectronCharge
	// ElemChargeNeutrality constrains the net charge of a phase (or the
	// whole system) to its goal, normally zero.
	ElemChargeNeutrality
	// ElemLatticeStoich ties sublattice site totals together in a fixed
	// ratio.
	ElemLatticeStoich
	// ElemKinetic is a conserved quantity imposed by kinetics rather than
	// by element identity.
	ElemKinetic
)

// Species describes one chemical species. The fields other than the
// status are frozen for the duration of an equilibrate call.
type Species struct {
	Name string

	// Phase is the index of the phase this species lives in.
	Phase int

	// MolecularWeight is in kg/kmol.
	MolecularWeight float64

	// Charge is the electrical charge in units of the electron charge.
	Charge float64

	// Kind is the unknown type; almost always UnknownMoleNumber.
	Kind UnknownKind
}

// ElementConstraint is one row of the linear constraint set
// Σᵢ aᵢⱼ nᵢ = bⱼ.
type ElementConstraint struct {
	Name string
	Type ElemType

	// Goal is the target abundance bⱼ.
	Goal float64
}

// Phase describes one phase of the system: either a stoichiometric
// single-species phase or a multispecies solution.
type Phase struct {
	Name string

	// Species lists the indices of the species in this phase, in order.
	Species []int

	// SingleSpecies is true for stoichiometric condensed phases with
	// exactly one species; the activity of that species is one.
	SingleSpecies bool

	// IdealSolution is true when all activity coefficients are unity; the
	// activity model is not consulted.
	IdealSolution bool

	// GasPhase marks the (at most one) ideal-gas phase.
	GasPhase bool

	// InertMoles is the quantity of non-reacting diluent in the phase. It
	// contributes to the phase total (and therefore to mole fractions) but
	// never changes.
	InertMoles float64

	// ElectricPotential is the phase's electric potential φ in volts.
	ElectricPotential float64

	// Activity computes ln γ for the phase's species. Nil means ideal.
	Activity ActivityModel
}

// ActivityModel computes activity coefficients for a multispecies phase.
// The argument and result slices are phase-local, ordered like
// Phase.Species. Implementations must be pure functions of n.
type ActivityModel interface {
	// UpdateLnGamma writes ln γ for each species in the phase into lnGamma.
	UpdateLnGamma(n []float64, lnGamma []float64) error
}

// ActivityJacobian is implemented by activity models that can provide
// the derivative block ∂ ln γᵢ/∂ nⱼ used for the Hessian correction.
type ActivityJacobian interface {
	// UpdateDLnGammaDn writes the phase-local Jacobian into jac, which has
	// dimensions len(n) × len(n).
	UpdateDLnGammaDn(n []float64, jac *mat.Dense) error
}

// StandardStateProvider evaluates standard-state properties for every
// species at a given temperature and pressure. It is called once per
// (T, P) change.
type StandardStateProvider interface {
	// UpdateStandardStates writes the dimensionless standard-state
	// chemical potentials µ°/RT into muSS and the standard-state molar
	// volumes [m³/kmol] into vSS, both indexed by species.
	UpdateStandardStates(T, P float64, muSS, vSS []float64) error
}

// Props holds mixture thermodynamic properties returned by a
// PropertyEvaluator.
type Props struct {
	H  float64 // enthalpy [J]
	S  float64 // entropy [J/K]
	Cp float64 // constant-pressure heat capacity [J/K]
	V  float64 // volume [m³]
}

// PropertyEvaluator extends a StandardStateProvider with mixture property
// evaluation. The outer state driver requires it for non-(T,P)
// specifications.
type PropertyEvaluator interface {
	StandardStateProvider

	// Properties evaluates the mixture enthalpy, entropy, heat capacity
	// and volume at the given state and composition.
	Properties(T, P float64, n []float64) (Props, error)
}

// System is the frozen problem schema plus the mutable composition. The
// schema fields (species, phases, elements, formula matrix, providers)
// are read-only during an equilibrate call; Moles is updated in place.
type System struct {
	Species  []Species
	Phases   []Phase
	Elements []ElementConstraint

	// Formula is the element-abundance matrix: Formula[i][j] is the number
	// of atoms of element j in species i (or the charge, for charge-type
	// rows).
	Formula [][]float64

	// Moles holds the current mole number of each species [kmol]. For
	// voltage-kind species the entry is the phase potential instead.
	Moles []float64

	// Thermo provides standard-state properties. It must outlive any
	// equilibrate call.
	Thermo StandardStateProvider

	// T and P record the state of the most recent solve.
	T, P float64

	// Mu receives the dimensional chemical potentials on exit from a
	// solve, in the unit system of the options.
	Mu []float64

	// Status receives the final species classification on exit.
	Status []SpeciesStatus

	// Iterations is the inner iteration count of the most recent solve.
	Iterations int
}

// NewSystem assembles and validates a System. The formula matrix has one
// row per species and one column per element constraint. Phase species
// lists are derived from the species' phase indices.
func NewSystem(species []Species, phases []Phase, elements []ElementConstraint,
	formula [][]float64, moles []float64, thermo StandardStateProvider) (*System, error) {

	n := len(species)
	if n == 0 || len(elements) == 0 {
		return nil, &SolveError{Kind: ErrInvalidInput,
			Message: "system needs at least one species and one element constraint"}
	}
	if len(formula) != n {
		return nil, &SolveError{Kind: ErrInvalidInput,
			Message: "formula matrix row count does not match species count"}
	}
	for i, row := range formula {
		if len(row) != len(elements) {
			return nil, &SolveError{Kind: ErrInvalidInput,
				Message: "formula matrix column count does not match element count for species " + species[i].Name}
		}
	}
	if len(moles) != n {
		return nil, &SolveError{Kind: ErrInvalidInput,
			Message: "mole vector length does not match species count"}
	}
	for i, v := range moles {
		if species[i].Kind == UnknownVoltage {
			continue
		}
		if v < 0 || math.IsNaN(v) {
			return nil, &SolveError{Kind: ErrInvalidInput,
				Message: "negative or non-finite initial moles for species " + species[i].Name}
		}
	}
	for j := range elements {
		if elements[j].Type == ElemAbsPos && elements[j].Goal < 0 {
			return nil, &SolveError{Kind: ErrInfeasibleElements,
				Message: "negative abundance goal for element " + elements[j].Name}
		}
	}

	ph := make([]Phase, len(phases))
	copy(ph, phases)
	for i := range ph {
		ph[i].Species = nil
	}
	for i, sp := range species {
		if sp.Phase < 0 || sp.Phase >= len(ph) {
			return nil, &SolveError{Kind: ErrInvalidInput,
				Message: "species " + sp.Name + " references a nonexistent phase"}
		}
		ph[sp.Phase].Species = append(ph[sp.Phase].Species, i)
	}
	for i := range ph {
		if ph[i].SingleSpecies && len(ph[i].Species) != 1 {
			return nil, &SolveError{Kind: ErrInvalidInput,
				Message: "single-species phase " + ph[i].Name + " does not have exactly one species"}
		}
		if len(ph[i].Species) == 1 {
			ph[i].SingleSpecies = true
		}
	}

	sys := &System{
		Species:  append([]Species(nil), species...),
		Phases:   ph,
		Elements: append([]ElementConstraint(nil), elements...),
		Formula:  formula,
		Moles:    append([]float64(nil), moles...),
		Thermo:   thermo,
		Mu:       make([]float64, n),
		Status:   make([]SpeciesStatus, n),
	}
	return sys, nil
}

// SetElementGoalsFromMoles overwrites the element goals with the
// abundances implied by the current composition. Charge-type rows keep a
// zero goal.
func (sys *System) SetElementGoalsFromMoles() {
	for j := range sys.Elements {
		switch sys.Elements[j].Type {
		case ElemChargeNeutrality, ElemElectronCharge:
			sys.Elements[j].Goal = 0
		default:
			var b float64
			for i := range sys.Species {
				if sys.Species[i].Kind == UnknownVoltage {
					continue
				}
				b += sys.Formula[i][j] * sys.Moles[i]
			}
			sys.Elements[j].Goal = b
		}
	}
}

// ElementResiduals returns E·n − b for each element constraint.
func (sys *System) ElementResiduals() []float64 {
	res := make([]float64, len(sys.Elements))
	for j := range sys.Elements {
		var sum float64
		for i := range sys.Species {
			if sys.Species[i].Kind == UnknownVoltage {
				continue
			}
			sum += sys.Formula[i][j] * sys.Moles[i]
		}
		res[j] = sum - sys.Elements[j].Goal
	}
	return res
}

// PhaseMoles returns the total moles of phase p, including inerts.
func (sys *System) PhaseMoles(p int) float64 {
	tot := sys.Phases[p].InertMoles
	for _, i := range sys.Phases[p].Species {
		if sys.Species[i].Kind == UnknownVoltage {
			continue
		}
		tot += sys.Moles[i]
	}
	return tot
}

// MoleFractions returns the mole fractions of the species in phase p,
// ordered like Phase.Species. A dead phase returns zeros.
func (sys *System) MoleFractions(p int) []float64 {
	ids := sys.Phases[p].Species
	x := make([]float64, len(ids))
	tot := sys.PhaseMoles(p)
	if tot <= 0 {
		return x
	}
	for k, i := range ids {
		x[k] = sys.Moles[i] / tot
	}
	return x
}

// SpeciesIndex returns the index of the named species, or -1.
func (sys *System) SpeciesIndex(name string) int {
	for i := range sys.Species {
		if sys.Species[i].Name == name {
			return i
		}
	}
	return -1
}
