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

package thermo

// NASA-7 coefficients for a subset of the GRI-Mech 3.0 species set,
// plus graphite. Sources: GRI-Mech 3.0 thermodynamic database and the
// CHEMKIN thermodynamic database for C(gr).
var griData = map[string]NASA7{
	"H2": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{2.34433112e+00, 7.98052075e-03, -1.94781510e-05,
			2.01572094e-08, -7.37611761e-12, -9.17935173e+02, 6.83010238e-01},
		High: [7]float64{3.33727920e+00, -4.94024731e-05, 4.99456778e-07,
			-1.79566394e-10, 2.00255376e-14, -9.50158922e+02, -3.20502331e+00},
	},
	"H": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{2.50000000e+00, 7.05332819e-13, -1.99591964e-15,
			2.30081632e-18, -9.27732332e-22, 2.54736599e+04, -4.46682853e-01},
		High: [7]float64{2.50000001e+00, -2.30842973e-11, 1.61561948e-14,
			-4.73515235e-18, 4.98197357e-22, 2.54736599e+04, -4.46682914e-01},
	},
	"O": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{3.16826710e+00, -3.27931884e-03, 6.64306396e-06,
			-6.12806624e-09, 2.11265971e-12, 2.91222592e+04, 2.05193346e+00},
		High: [7]float64{2.56942078e+00, -8.59741137e-05, 4.19484589e-08,
			-1.00177799e-11, 1.22833691e-15, 2.92175791e+04, 4.78433864e+00},
	},
	"O2": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{3.78245636e+00, -2.99673416e-03, 9.84730201e-06,
			-9.68129509e-09, 3.24372837e-12, -1.06394356e+03, 3.65767573e+00},
		High: [7]float64{3.28253784e+00, 1.48308754e-03, -7.57966669e-07,
			2.09470555e-10, -2.16717794e-14, -1.08845772e+03, 5.45323129e+00},
	},
	"OH": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{3.99201543e+00, -2.40131752e-03, 4.61793841e-06,
			-3.88113333e-09, 1.36411470e-12, 3.61508056e+03, -1.03925458e-01},
		High: [7]float64{3.09288767e+00, 5.48429716e-04, 1.26505228e-07,
			-8.79461556e-11, 1.17412376e-14, 3.85865700e+03, 4.47669610e+00},
	},
	"H2O": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{4.19864056e+00, -2.03643410e-03, 6.52040211e-06,
			-5.48797062e-09, 1.77197817e-12, -3.02937267e+04, -8.49032208e-01},
		High: [7]float64{3.03399249e+00, 2.17691804e-03, -1.64072518e-07,
			-9.70419870e-11, 1.68200992e-14, -3.00042971e+04, 4.96677010e+00},
	},
	"CH4": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{5.14987613e+00, -1.36709788e-02, 4.91800599e-05,
			-4.84743026e-08, 1.66693956e-11, -1.02466476e+04, -4.64130376e+00},
		High: [7]float64{7.48514950e-02, 1.33909467e-02, -5.73285809e-06,
			1.22292535e-09, -1.01815230e-13, -9.46834459e+03, 1.84373180e+01},
	},
	"CO": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{3.57953347e+00, -6.10353680e-04, 1.01681433e-06,
			9.07005884e-10, -9.04424499e-13, -1.43440860e+04, 3.50840928e+00},
		High: [7]float64{2.71518561e+00, 2.06252743e-03, -9.98825771e-07,
			2.30053008e-10, -2.03647716e-14, -1.41518724e+04, 7.81868772e+00},
	},
	"CO2": {
		TLow: 200, TMid: 1000, THigh: 3500,
		Low: [7]float64{2.35677352e+00, 8.98459677e-03, -7.12356269e-06,
			2.45919022e-09, -1.43699548e-13, -4.83719697e+04, 9.90105222e+00},
		High: [7]float64{3.85746029e+00, 4.41437026e-03, -2.21481404e-06,
			5.23490188e-10, -4.72084164e-14, -4.87591660e+04, 2.27163806e+00},
	},
	"N2": {
		TLow: 300, TMid: 1000, THigh: 5000,
		Low: [7]float64{3.29867700e+00, 1.40824040e-03, -3.96322200e-06,
			5.64151500e-09, -2.44485400e-12, -1.02089990e+03, 3.95037200e+00},
		High: [7]float64{2.92664000e+00, 1.48797680e-03, -5.68476000e-07,
			1.00970380e-10, -6.75335100e-15, -9.22797700e+02, 5.98052800e+00},
	},
	"C(gr)": {
		TLow: 300, TMid: 1000, THigh: 5000,
		Low: [7]float64{-3.10872000e-01, 4.40536000e-03, 1.90394000e-06,
			-6.38547000e-09, 2.91491000e-12, -1.08508000e+02, 1.13283000e+00},
		High: [7]float64{1.45571000e+00, 1.71702000e-03, -6.97627000e-07,
			1.35277000e-10, -9.61765000e-15, -6.95138000e+02, -8.55984000e+00},
	},
}

// Molar volume of graphite [m³/kmol], 12.011 kg/kmol over 2260 kg/m³.
const graphiteMolarVolume = 12.011 / 2260.0

// GRI returns the standard-state model for a species from the bundled
// GRI-Mech 3.0 subset. Gas species come back as ideal-gas states;
// "C(gr)" is graphite with a constant molar volume.
func GRI(name string) (PDSS, bool) {
	ref, ok := griData[name]
	if !ok {
		return PDSS{}, false
	}
	if name == "C(gr)" {
		return PDSS{Kind: ConstVol, Ref: ref, V0: graphiteMolarVolume}, true
	}
	return PDSS{Kind: IdealGas, Ref: ref}, true
}
