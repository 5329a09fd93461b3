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

// diag wraps the injected logger with the numeric verbosity levels the
// solver uses. Level 0 (or a nil logger) elides everything.
type diag struct {
	log   logrus.FieldLogger
	level int
}

func newDiag(opts *Options) diag {
	if opts.Logger == nil {
		return diag{}
	}
	return diag{log: opts.Logger, level: opts.LogLevel}
}

func (d diag) on(level int) bool { return d.log != nil && d.level >= level }

func (d diag) printf(level int, format string, args ...interface{}) {
	if d.on(level) {
		d.log.Infof(format, args...)
	}
}

func (d diag) withFields(level int, fields logrus.Fields, msg string) {
	if d.on(level) {
		d.log.WithFields(fields).Info(msg)
	}
}
