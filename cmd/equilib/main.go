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

// Command equilib computes the chemical equilibrium of a multiphase
// mixture described by a YAML input file and prints the resulting
// composition.
package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chemsolve/equilib"
	"github.com/chemsolve/equilib/activity"
	"github.com/chemsolve/equilib/thermo"
)

type speciesConfig struct {
	Name    string             `yaml:"name"`
	Phase   string             `yaml:"phase"`
	Formula map[string]float64 `yaml:"formula"`
	Moles   float64            `yaml:"moles"`
	Charge  float64            `yaml:"charge"`

	// Thermo selects the standard-state source: "gri" uses the bundled
	// GRI-Mech data for Name; "const" uses the fields below.
	Thermo string  `yaml:"thermo"`
	T0     float64 `yaml:"t0"`
	H0     float64 `yaml:"h0"`  // J/kmol at T0
	S0     float64 `yaml:"s0"`  // J/(kmol K) at T0
	Cp0    float64 `yaml:"cp0"` // J/(kmol K)
	V0     float64 `yaml:"v0"`  // m³/kmol; nonzero means condensed
}

type phaseConfig struct {
	Name string `yaml:"name"`
	// Type is "gas", "solution" or "condensed".
	Type string `yaml:"type"`

	InertMoles float64 `yaml:"inert_moles"`

	// Activity selects the solution model: "" or "ideal", or
	// "margules" with Alpha set.
	Activity string  `yaml:"activity"`
	Alpha    float64 `yaml:"alpha"`
}

type problemConfig struct {
	Species     []speciesConfig `yaml:"species"`
	Phases      []phaseConfig   `yaml:"phases"`
	Temperature float64         `yaml:"temperature"`
	Pressure    float64         `yaml:"pressure"`

	// ChargeNeutral adds a charge-neutrality constraint over the ionic
	// charges.
	ChargeNeutral bool `yaml:"charge_neutral"`
}

func (pc *problemConfig) build() (*equilib.System, error) {
	if len(pc.Phases) == 0 {
		pc.Phases = []phaseConfig{{Name: "gas", Type: "gas"}}
	}
	phaseIdx := map[string]int{}
	phases := make([]equilib.Phase, len(pc.Phases))
	for i, p := range pc.Phases {
		phaseIdx[p.Name] = i
		phases[i] = equilib.Phase{Name: p.Name, InertMoles: p.InertMoles}
		switch p.Type {
		case "gas":
			phases[i].GasPhase = true
			phases[i].IdealSolution = true
		case "solution":
		case "condensed", "":
		default:
			return nil, fmt.Errorf("phase %s: unknown type %q", p.Name, p.Type)
		}
		switch p.Activity {
		case "", "ideal":
			if !phases[i].GasPhase {
				phases[i].IdealSolution = true
			}
		case "margules":
			phases[i].Activity = activity.Margules{Alpha: p.Alpha}
		default:
			return nil, fmt.Errorf("phase %s: unknown activity model %q", p.Name, p.Activity)
		}
	}

	// The element set is the union of the formula keys, in sorted order.
	elemSet := map[string]bool{}
	for _, sp := range pc.Species {
		for e := range sp.Formula {
			elemSet[e] = true
		}
	}
	var elemNames []string
	for e := range elemSet {
		elemNames = append(elemNames, e)
	}
	sort.Strings(elemNames)
	elements := make([]equilib.ElementConstraint, 0, len(elemNames)+1)
	for _, e := range elemNames {
		elements = append(elements, equilib.ElementConstraint{Name: e, Type: equilib.ElemAbsPos})
	}
	if pc.ChargeNeutral {
		elements = append(elements, equilib.ElementConstraint{
			Name: "charge", Type: equilib.ElemChargeNeutrality})
	}

	mgr := thermo.NewManager()
	species := make([]equilib.Species, len(pc.Species))
	formula := make([][]float64, len(pc.Species))
	moles := make([]float64, len(pc.Species))
	for i, sp := range pc.Species {
		pi, ok := phaseIdx[sp.Phase]
		if !ok {
			return nil, fmt.Errorf("species %s: unknown phase %q", sp.Name, sp.Phase)
		}
		species[i] = equilib.Species{Name: sp.Name, Phase: pi, Charge: sp.Charge}
		moles[i] = sp.Moles

		row := make([]float64, len(elements))
		for j, e := range elemNames {
			row[j] = sp.Formula[e]
		}
		if pc.ChargeNeutral {
			row[len(elemNames)] = sp.Charge
		}
		formula[i] = row

		switch sp.Thermo {
		case "", "gri":
			model, ok := thermo.GRI(sp.Name)
			if !ok {
				return nil, fmt.Errorf("species %s: no bundled thermo data; supply const data", sp.Name)
			}
			mgr.Add(sp.Name, pi, model)
		case "const":
			ref := thermo.ConstCp{T0: sp.T0, H0: sp.H0, S0: sp.S0, Cp0: sp.Cp0}
			model := thermo.PDSS{Kind: thermo.IdealGas, Ref: ref}
			if sp.V0 > 0 {
				model = thermo.PDSS{Kind: thermo.ConstVol, Ref: ref, V0: sp.V0}
			}
			mgr.Add(sp.Name, pi, model)
		default:
			return nil, fmt.Errorf("species %s: unknown thermo source %q", sp.Name, sp.Thermo)
		}
	}

	sys, err := equilib.NewSystem(species, phases, elements, formula, moles, mgr)
	if err != nil {
		return nil, err
	}
	sys.SetElementGoalsFromMoles()
	return sys, nil
}

func run(configFile string, logLevel int, out *os.File) error {
	f, err := os.Open(configFile)
	if err != nil {
		return err
	}
	defer f.Close()
	var pc problemConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pc); err != nil {
		return fmt.Errorf("parsing %s: %w", configFile, err)
	}
	if pc.Temperature <= 0 || pc.Pressure <= 0 {
		return fmt.Errorf("%s must set positive temperature and pressure", configFile)
	}

	sys, err := pc.build()
	if err != nil {
		return err
	}

	opts := equilib.DefaultOptions()
	if logLevel > 0 {
		log := logrus.New()
		log.SetOutput(os.Stderr)
		opts.Logger = log
		opts.LogLevel = logLevel
	}
	its, err := equilib.EquilibrateTP(sys, pc.Temperature, pc.Pressure, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "equilibrium at T=%g K, P=%g Pa (%d iterations)\n\n",
		sys.T, sys.P, its)
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "species\tphase\tkmol\tmole fraction\tµ [J/kmol]")
	for p := range sys.Phases {
		x := sys.MoleFractions(p)
		for k, i := range sys.Phases[p].Species {
			fmt.Fprintf(w, "%s\t%s\t%.6g\t%.6g\t%.6g\n",
				sys.Species[i].Name, sys.Phases[p].Name, sys.Moles[i], x[k], sys.Mu[i])
		}
	}
	return w.Flush()
}

func main() {
	var (
		configFile string
		logLevel   int
	)
	cmd := &cobra.Command{
		Use:   "equilib",
		Short: "Multiphase chemical equilibrium by Gibbs free-energy minimization",
		Long: `equilib reads a YAML description of a multiphase chemical mixture
and computes its equilibrium composition at fixed temperature and
pressure by Gibbs free-energy minimization.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, logLevel, os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "problem.yaml",
		"YAML problem description")
	cmd.Flags().IntVarP(&logLevel, "verbosity", "v", 0,
		"solver diagnostic level (0-5)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
