/*
 * qm.go, part of mindless.
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
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
)

//Engine is a quantum-chemistry program able to refine a molecule.
//Implementations must be safe for concurrent use: each call works in its
//own scratch directory and shares no mutable state with other calls.
type Engine interface {
	//Name returns the name of the program.
	Name() string

	//Optimize optimizes the geometry of mol, with at most maxCycles
	//steps (0 means the program default). It returns a new molecule with
	//the optimized coordinates and the final energy. mol is not modified.
	Optimize(mol *mindless.Molecule, maxCycles int) (*mindless.Molecule, error)

	//SinglePoint returns the energy of mol, in Hartree. It fails if the
	//SCF does not converge.
	SinglePoint(mol *mindless.Molecule) (float64, error)

	//CheckGap reports whether the HOMO-LUMO gap of mol is at least
	//threshold eV. It returns an error wrapping ErrGapUnsupported when the
	//gap can't be obtained.
	CheckGap(mol *mindless.Molecule, threshold float64) (bool, error)
}

//Kind identifies one of the supported engines.
type Kind int

const (
	KindXTB Kind = iota
	KindORCA
)

func (k Kind) String() string {
	switch k {
	case KindXTB:
		return "xtb"
	case KindORCA:
		return "orca"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

//ParseKind returns the Kind for an engine name, case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xtb":
		return KindXTB, nil
	case "orca":
		return KindORCA, nil
	}
	return 0, fmt.Errorf("engine %q not implemented", name)
}

type settings struct {
	run      Runner
	log      zerolog.Logger
	keep     bool
	lookPath func(string) (string, error)
}

//Option configures an engine built with New, NewXTB or NewORCA.
type Option func(*settings)

//WithRunner sets the Runner used to start the engine.
func WithRunner(r Runner) Option {
	return func(s *settings) { s.run = r }
}

//WithLogger sets the logger of the engine.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

//WithKeepFiles keeps the scratch directories of all calculations.
func WithKeepFiles(keep bool) Option {
	return func(s *settings) { s.keep = keep }
}

//WithLookPath replaces exec.LookPath in New.
func WithLookPath(f func(string) (string, error)) Option {
	return func(s *settings) { s.lookPath = f }
}

func newSettings(opts []Option) settings {
	s := settings{run: ExecRunner{}, log: zerolog.Nop(), lookPath: exec.LookPath}
	for _, o := range opts {
		o(&s)
	}
	return s
}

//Resolve returns the executable for the engine kind: configured if not
//empty (a name in PATH or a path), otherwise the default program name.
//lookPath is exec.LookPath if nil. The error wraps ErrEngineNotFound.
func Resolve(kind Kind, configured string, lookPath func(string) (string, error)) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	name := strings.TrimSpace(configured)
	if name == "" {
		name = kind.String()
	}
	path, err := lookPath(name)
	if err != nil || path == "" {
		msg := name
		if err != nil {
			msg = err.Error()
		}
		return "", newError(ErrEngineNotFound, kind.String(), "", msg, true, "Resolve")
	}
	return path, nil
}

//New resolves the executable of the engine kind, with the path and
//settings in C, and returns the engine.
func New(kind Kind, C config.Config, opts ...Option) (Engine, error) {
	s := newSettings(opts)
	switch kind {
	case KindXTB:
		path, err := Resolve(kind, C.XTB.Path, s.lookPath)
		if err != nil {
			return nil, err
		}
		return NewXTB(path, C.XTB, opts...), nil
	case KindORCA:
		path, err := Resolve(kind, C.ORCA.Path, s.lookPath)
		if err != nil {
			return nil, err
		}
		return NewORCA(path, C.ORCA, opts...), nil
	}
	return nil, fmt.Errorf("engine %v not implemented", kind)
}
