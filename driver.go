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
	"errors"
	"math"

	"github.com/cenkalti/backoff/v4"
)

// PropertyPair names the two state variables held fixed during an
// equilibrate call.
type PropertyPair int

const (
	// PairTP fixes temperature and pressure.
	PairTP PropertyPair = iota
	// PairHP fixes enthalpy and pressure.
	PairHP
	// PairSP fixes entropy and pressure.
	PairSP
	// PairSV fixes entropy and volume.
	PairSV
	// PairTV fixes temperature and volume.
	PairTV
	// PairUV fixes internal energy and volume.
	PairUV
)

// Bracket limits for the free state variables of the outer driver.
const (
	driverTMin = 200.0
	driverTMax = 1e5
	driverPMin = 1e-3
	driverPMax = 1e10
)

// Equilibrate brings the system to equilibrium while holding the given
// property pair fixed. v1 and v2 are the two property values in the
// pair's order (e.g. PairHP takes enthalpy [J] then pressure [Pa]).
// Properties other than T and P require the system's thermo provider to
// implement PropertyEvaluator. Returns the total number of inner
// iterations across the outer loop.
func Equilibrate(sys *System, pair PropertyPair, v1, v2 float64, opts *Options) (int, error) {
	o, err := opts.sanitized()
	if err != nil {
		return 0, err
	}
	if pair == PairTP {
		return EquilibrateTP(sys, v1, v2, o)
	}
	pe, ok := sys.Thermo.(PropertyEvaluator)
	if !ok {
		return 0, &SolveError{Kind: ErrInvalidInput,
			Message: "thermo provider cannot evaluate mixture properties; fixed-(T,P) only"}
	}
	d := &stateDriver{sys: sys, opts: o, pe: pe, dbg: newDiag(o)}
	switch pair {
	case PairHP:
		return d.solveTScan(v2, v1, propH, "enthalpy")
	case PairSP:
		return d.solveTScan(v2, v1, propS, "entropy")
	case PairTV:
		its, _, err := d.solveTV(v1, v2)
		return its, err
	case PairSV:
		return d.solveXV(v1, v2, propS, "entropy")
	case PairUV:
		return d.solveXV(v1, v2, propU, "internal energy")
	}
	return 0, &SolveError{Kind: ErrInvalidInput, Message: "unknown property pair"}
}

type propKind int

const (
	propH propKind = iota
	propS
	propU
)

type stateDriver struct {
	sys  *System
	opts *Options
	pe   PropertyEvaluator
	dbg  diag

	inner int // accumulated inner iterations
}

// innerTP equilibrates at fixed (T, P), retrying with an enlarged inner
// iteration budget when the first attempt fails to converge, and then
// evaluates the mixture properties at the solution.
func (d *stateDriver) innerTP(T, P float64) (Props, error) {
	maxIter := d.opts.MaxInnerIter
	op := func() error {
		o := *d.opts
		o.MaxInnerIter = maxIter
		its, err := EquilibrateTP(d.sys, T, P, &o)
		d.inner += its
		if err == nil {
			return nil
		}
		var se *SolveError
		if errors.As(err, &se) && se.Kind == ErrNonConvergence {
			d.dbg.printf(1, "inner solve at T=%g P=%g did not converge; retrying with %d iterations",
				T, P, 2*maxIter)
			maxIter *= 2
			return err
		}
		return backoff.Permanent(err)
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)); err != nil {
		return Props{}, err
	}
	return d.pe.Properties(T, P, d.sys.Moles)
}

func (d *stateDriver) propValue(pr Props, kind propKind, P float64) float64 {
	switch kind {
	case propH:
		return pr.H
	case propS:
		return pr.S
	case propU:
		return pr.H - P*pr.V
	}
	return math.NaN()
}

// propSlope is the analytic dX/dT at constant pressure used for the
// Newton update: Cp for enthalpy, Cp/T for entropy, and roughly Cv for
// internal energy. Bracketed bisection backs it up, so an approximate
// slope is fine.
func (d *stateDriver) propSlope(pr Props, kind propKind, T, P float64) float64 {
	switch kind {
	case propH:
		return pr.Cp
	case propS:
		return pr.Cp / T
	case propU:
		cv := pr.Cp - P*pr.V/T // exact for an ideal gas
		if cv <= 0 {
			cv = pr.Cp
		}
		return cv
	}
	return math.NaN()
}

// solveTScan finds the temperature at which the given property matches
// its target while pressure stays fixed: a bracketed Newton iteration,
// monotone because dH/dT and dS/dT are positive.
func (d *stateDriver) solveTScan(P, target float64, kind propKind, name string) (int, error) {
	T := d.sys.T
	if T <= 0 {
		T = 298.15
	}
	T = clamp(T, driverTMin, driverTMax)
	tLow, tHigh := driverTMin, driverTMax
	tol := d.opts.Rtol * (math.Abs(target) + 1)

	for outer := 0; outer < d.opts.MaxOuterIter; outer++ {
		pr, err := d.innerTP(T, P)
		if err != nil {
			return d.inner, err
		}
		val := d.propValue(pr, kind, P)
		resid := val - target
		d.dbg.printf(2, "outer %d: T=%.6g %s residual=%.6g", outer, T, name, resid)
		if math.Abs(resid) <= tol {
			return d.inner, nil
		}
		if resid < 0 {
			tLow = math.Max(tLow, T)
		} else {
			tHigh = math.Min(tHigh, T)
		}
		slope := d.propSlope(pr, kind, T, P)
		var tNew float64
		if slope > 0 {
			tNew = T - resid/slope
		} else {
			tNew = 0.5 * (tLow + tHigh)
		}
		// Newton is trusted only inside the live bracket; bisect otherwise.
		if tNew <= tLow || tNew >= tHigh || math.IsNaN(tNew) {
			tNew = 0.5 * (tLow + tHigh)
		}
		// Limit relative jumps so a bad Cp cannot fling the state.
		tNew = clamp(tNew, T/3, T*3)
		T = tNew
	}
	return d.inner, &SolveError{Kind: ErrNonConvergence, Iterations: d.inner,
		Message: "outer iteration on temperature did not close the " + name + " target"}
}

// solveTV finds the pressure that matches the volume target at fixed
// temperature. Newton on ln P with the ideal-gas slope dV/dlnP = −V,
// safeguarded by bisection on the bracket.
func (d *stateDriver) solveTV(T, vTarget float64) (int, Props, error) {
	if vTarget <= 0 {
		return d.inner, Props{}, &SolveError{Kind: ErrInvalidInput, Message: "volume target must be positive"}
	}
	P := d.sys.P
	if P <= 0 {
		P = OneAtm
	}
	P = clamp(P, driverPMin, driverPMax)
	pLow, pHigh := driverPMin, driverPMax
	tol := d.opts.Rtol * (vTarget + 1)

	var pr Props
	var err error
	for outer := 0; outer < d.opts.MaxOuterIter; outer++ {
		pr, err = d.innerTP(T, P)
		if err != nil {
			return d.inner, pr, err
		}
		resid := pr.V - vTarget
		d.dbg.printf(2, "volume match %d: P=%.6g residual=%.6g", outer, P, resid)
		if math.Abs(resid) <= tol {
			return d.inner, pr, nil
		}
		// V decreases with P.
		if resid > 0 {
			pLow = math.Max(pLow, P)
		} else {
			pHigh = math.Min(pHigh, P)
		}
		dLnP := resid / pr.V
		if math.Abs(dLnP) > 2 {
			dLnP = math.Copysign(2, dLnP)
		}
		pNew := P * math.Exp(dLnP)
		if pNew <= pLow || pNew >= pHigh || math.IsNaN(pNew) {
			pNew = math.Sqrt(pLow * pHigh)
		}
		P = pNew
	}
	return d.inner, pr, &SolveError{Kind: ErrNonConvergence, Iterations: d.inner,
		Message: "outer iteration on pressure did not close the volume target"}
}

// solveXV handles the two-variable specifications (S,V) and (U,V): an
// outer temperature iteration whose every evaluation first matches the
// volume by adjusting pressure.
func (d *stateDriver) solveXV(target, vTarget float64, kind propKind, name string) (int, error) {
	T := d.sys.T
	if T <= 0 {
		T = 298.15
	}
	T = clamp(T, driverTMin, driverTMax)
	tLow, tHigh := driverTMin, driverTMax
	tol := d.opts.Rtol * (math.Abs(target) + 1)

	for outer := 0; outer < d.opts.MaxOuterIter; outer++ {
		_, pr, err := d.solveTV(T, vTarget)
		if err != nil {
			return d.inner, err
		}
		P := d.sys.P
		val := d.propValue(pr, kind, P)
		resid := val - target
		d.dbg.printf(2, "outer %d: T=%.6g %s residual=%.6g", outer, T, name, resid)
		if math.Abs(resid) <= tol {
			return d.inner, nil
		}
		if resid < 0 {
			tLow = math.Max(tLow, T)
		} else {
			tHigh = math.Min(tHigh, T)
		}
		// At constant volume the entropy and energy slopes track Cv.
		slope := d.propSlope(pr, propU, T, P)
		if kind == propS {
			slope /= T
		}
		var tNew float64
		if slope > 0 {
			tNew = T - resid/slope
		} else {
			tNew = 0.5 * (tLow + tHigh)
		}
		if tNew <= tLow || tNew >= tHigh || math.IsNaN(tNew) {
			tNew = 0.5 * (tLow + tHigh)
		}
		tNew = clamp(tNew, T/3, T*3)
		T = tNew
	}
	return d.inner, &SolveError{Kind: ErrNonConvergence, Iterations: d.inner,
		Message: "outer iteration on temperature did not close the " + name + " target"}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
