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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knallgasYAML = `
temperature: 1500
pressure: 1.0e5
phases:
  - name: gas
    type: gas
species:
  - name: H2
    phase: gas
    formula: {H: 2}
    moles: 2
  - name: O2
    phase: gas
    formula: {O: 2}
    moles: 1
  - name: H2O
    phase: gas
    formula: {H: 2, O: 1}
    moles: 0
`

func TestRunKnallgas(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(knallgasYAML), 0o644))

	outPath := filepath.Join(dir, "out.txt")
	out, err := os.Create(outPath)
	require.NoError(t, err)
	require.NoError(t, run(cfg, 0, out))
	require.NoError(t, out.Close())

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	got := string(b)
	assert.Contains(t, got, "T=1500")
	for _, name := range []string{"H2", "O2", "H2O"} {
		assert.Contains(t, got, name)
	}
}

func TestBuildErrors(t *testing.T) {
	pc := &problemConfig{
		Phases: []phaseConfig{{Name: "gas", Type: "plasma"}},
	}
	_, err := pc.build()
	assert.ErrorContains(t, err, "unknown type")

	pc = &problemConfig{
		Species: []speciesConfig{{Name: "H2", Phase: "nope", Formula: map[string]float64{"H": 2}}},
	}
	_, err = pc.build()
	assert.ErrorContains(t, err, "unknown phase")

	pc = &problemConfig{
		Species: []speciesConfig{{Name: "Xy", Phase: "gas", Formula: map[string]float64{"X": 1}}},
	}
	_, err = pc.build()
	assert.ErrorContains(t, err, "no bundled thermo data")
}

func TestRunRejectsMissingState(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(strings.Replace(
		knallgasYAML, "temperature: 1500", "temperature: 0", 1)), 0o644))
	assert.Error(t, run(cfg, 0, os.Stdout))
}
