/*
 * errors.go, part of mindless.
 *
 *
 * Copyright 2024 The mindless authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package qm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	//ErrEngineNotFound means the engine executable could not be
	//resolved. It is fatal for a whole run.
	ErrEngineNotFound = errors.New("engine executable not found")
	//ErrNotConverged means the engine ended abnormally or its SCF or
	//geometry optimization did not converge.
	ErrNotConverged = errors.New("calculation did not converge")
	ErrNoEnergy     = errors.New("no energy in output")
	ErrNoGeometry   = errors.New("no geometry in output")
	//ErrGapUnsupported means the engine output holds no HOMO-LUMO gap.
	ErrGapUnsupported = errors.New("HOMO-LUMO gap not available")
	ErrCantInput      = errors.New("can't build input")
)

//Error is the error returned by the engines. It satisfies
//mindless.CriticalError: only a critical Error should abort a run, the
//others only ruin the current calculation.
type Error struct {
	err      error //one of the Err* values
	program  string
	dir      string //scratch directory of the failed job, if any
	message  string
	deco     []string
	critical bool
}

func newError(kind error, program, dir, message string, critical bool, deco ...string) *Error {
	return &Error{err: kind, program: program, dir: dir, message: message, critical: critical, deco: deco}
}

func (err *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", err.program, err.err)
	if err.message != "" {
		fmt.Fprintf(&b, ": %s", err.message)
	}
	if err.dir != "" {
		fmt.Fprintf(&b, " (in %s)", err.dir)
	}
	return b.String()
}

//Decorate adds deco to the trail of functions the error went through
//and returns the trail.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func (err *Error) Critical() bool { return err.critical }

func (err *Error) Unwrap() error { return err.err }

//Program returns the name of the engine that failed.
func (err *Error) Program() string { return err.program }
