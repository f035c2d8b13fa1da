/*
 * xtb.go, part of mindless.
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

//In order to use this part of the library you need the xtb program, from
//Prof. Stefan Grimme's group. Please cite the xtb references if you use it.

package qm

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
)

const (
	xtbInput  = "molecule.xyz"
	xtbOutput = "xtb.out"
	xtbOptXYZ = "xtbopt.xyz"
)

//XTB runs the xtb program with one of the GFNn-xTB methods.
type XTB struct {
	command string
	level   int
	run     Runner
	log     zerolog.Logger
	keep    bool
}

//NewXTB returns an XTB engine running the executable command with the
//settings in C.
func NewXTB(command string, C config.XTB, opts ...Option) *XTB {
	s := newSettings(opts)
	return &XTB{
		command: command,
		level:   C.Level,
		run:     s.run,
		log:     s.log.With().Str("engine", "xtb").Logger(),
		keep:    s.keep,
	}
}

func (X *XTB) Name() string { return "xtb" }

//Command returns the resolved xtb executable.
func (X *XTB) Command() string { return X.command }

func (X *XTB) args(mol *mindless.Molecule, opt bool, maxCycles int) []string {
	args := []string{xtbInput}
	if opt {
		args = append(args, "--opt")
		if maxCycles > 0 {
			args = append(args, "--cycles", strconv.Itoa(maxCycles))
		}
	}
	args = append(args,
		"--gfn", strconv.Itoa(X.level),
		"--chrg", strconv.Itoa(mol.Charge),
		"--uhf", strconv.Itoa(mol.UHF),
	)
	return args
}

//calc prepares a scratch directory for mol, runs xtb and hands the
//directory and output to read, before the directory is removed.
func (X *XTB) calc(mol *mindless.Molecule, opt bool, maxCycles int, read func(dir, out string) error) error {
	dir, cleanup, err := scratch("xtb", X.keep)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := mindless.XYZFileWrite(filepath.Join(dir, xtbInput), mol); err != nil {
		return newError(ErrCantInput, "xtb", dir, err.Error(), false, "XYZFileWrite")
	}
	if err := mindless.ChargeFilesWrite(dir, "", mol, false); err != nil {
		return newError(ErrCantInput, "xtb", dir, err.Error(), false, "ChargeFilesWrite")
	}
	args := X.args(mol, opt, maxCycles)
	X.log.Trace().Str("dir", dir).Strs("args", args).Msg("running")
	out, err := runTo(X.run, dir, X.command, args, xtbOutput)
	if err != nil {
		return runError("xtb", X.keptDir(dir), err)
	}
	if !xtbNormalTermination(out) {
		return newError(ErrNotConverged, "xtb", X.keptDir(dir), "abnormal termination", false, "Run")
	}
	return read(dir, out)
}

func (X *XTB) keptDir(dir string) string {
	if X.keep {
		return dir
	}
	return ""
}

//Optimize runs a geometry optimization.
func (X *XTB) Optimize(mol *mindless.Molecule, maxCycles int) (*mindless.Molecule, error) {
	var ret *mindless.Molecule
	err := X.calc(mol, true, maxCycles, func(dir, out string) error {
		geo, err := mindless.XYZFileRead(filepath.Join(dir, xtbOptXYZ))
		if err != nil {
			return newError(ErrNoGeometry, "xtb", X.keptDir(dir), err.Error(), false, "XYZFileRead", "Optimize")
		}
		if geo.Len() != mol.Len() {
			return newError(ErrNoGeometry, "xtb", X.keptDir(dir), "atom count changed", false, "Optimize")
		}
		energy, err := xtbValue(out, "TOTAL ENERGY")
		if err != nil {
			return newError(ErrNoEnergy, "xtb", X.keptDir(dir), err.Error(), false, "Optimize")
		}
		ret = mol.Copy()
		ret.Coords = geo.Coords
		ret.SetEnergy(energy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

//SinglePoint returns the GFNn-xTB energy of mol.
func (X *XTB) SinglePoint(mol *mindless.Molecule) (float64, error) {
	var energy float64
	err := X.calc(mol, false, 0, func(dir, out string) error {
		var err error
		energy, err = xtbValue(out, "TOTAL ENERGY")
		if err != nil {
			return newError(ErrNoEnergy, "xtb", X.keptDir(dir), err.Error(), false, "SinglePoint")
		}
		return nil
	})
	return energy, err
}

//CheckGap runs a single point and compares its HOMO-LUMO gap with
//threshold, in eV.
func (X *XTB) CheckGap(mol *mindless.Molecule, threshold float64) (bool, error) {
	var gap float64
	err := X.calc(mol, false, 0, func(dir, out string) error {
		var err error
		gap, err = xtbValue(out, "HOMO-LUMO GAP")
		if err != nil {
			return newError(ErrGapUnsupported, "xtb", X.keptDir(dir), err.Error(), false, "CheckGap")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	X.log.Debug().Float64("gap", gap).Float64("threshold", threshold).Msg("HOMO-LUMO gap")
	return gap >= threshold, nil
}

func xtbNormalTermination(out string) bool {
	return !strings.Contains(out, "abnormal termination") &&
		!strings.Contains(out, "FAILED TO CONVERGE") &&
		!strings.Contains(out, "SCF not converged")
}

//xtbValue returns the number following key in the last line of the
//output that contains it, such as
//	| TOTAL ENERGY              -5.070544440612 Eh   |
func xtbValue(out, key string) (float64, error) {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		idx := strings.Index(lines[i], key)
		if idx < 0 {
			continue
		}
		fields := strings.Fields(lines[i][idx+len(key):])
		if len(fields) == 0 {
			break
		}
		return strconv.ParseFloat(fields[0], 64)
	}
	return 0, fmt.Errorf("%q not found", key)
}
