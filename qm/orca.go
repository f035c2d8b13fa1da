/*
 * orca.go, part of mindless.
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
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
)

const (
	orcaGeometry = "input.xyz"
	orcaJob      = "molecule"
	orcaNormal   = "****ORCA TERMINATED NORMALLY****"
)

//ORCA runs DFT calculations with the ORCA program.
type ORCA struct {
	command    string
	functional string
	basis      string
	gridsize   int
	scfcycles  int
	run        Runner
	log        zerolog.Logger
	keep       bool
}

//NewORCA returns an ORCA engine running the executable command with the
//settings in C.
func NewORCA(command string, C config.ORCA, opts ...Option) *ORCA {
	s := newSettings(opts)
	return &ORCA{
		command:    command,
		functional: C.Functional,
		basis:      C.Basis,
		gridsize:   C.GridSize,
		scfcycles:  C.SCFCycles,
		run:        s.run,
		log:        s.log.With().Str("engine", "orca").Logger(),
		keep:       s.keep,
	}
}

func (O *ORCA) Name() string { return "orca" }

//Command returns the resolved ORCA executable.
func (O *ORCA) Command() string { return O.command }

//BuildInput returns the ORCA input for mol. The geometry is read from the
//file orcaGeometry, next to the input.
func (O *ORCA) BuildInput(mol *mindless.Molecule, opt bool, maxCycles int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "! %s %s\n", O.functional, O.basis)
	fmt.Fprintf(&b, "! DEFGRID%d\n", O.gridsize)
	b.WriteString("! NoTRAH NoSOSCF SlowConv\n")
	if opt {
		b.WriteString("! Opt\n")
	}
	fmt.Fprintf(&b, "%%scf\n\tMaxIter %d\nend\n", O.scfcycles)
	if opt && maxCycles > 0 {
		fmt.Fprintf(&b, "%%geom\n\tMaxIter %d\nend\n", maxCycles)
	}
	fmt.Fprintf(&b, "* xyzfile %d %d %s\n", mol.Charge, mol.UHF+1, orcaGeometry)
	return b.String()
}

func (O *ORCA) keptDir(dir string) string {
	if O.keep {
		return dir
	}
	return ""
}

//calc prepares a scratch directory for mol, runs ORCA and hands the
//directory and output to read, before the directory is removed.
func (O *ORCA) calc(mol *mindless.Molecule, opt bool, maxCycles int, read func(dir, out string) error) error {
	dir, cleanup, err := scratch("orca", O.keep)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := mindless.XYZFileWrite(filepath.Join(dir, orcaGeometry), mol); err != nil {
		return newError(ErrCantInput, "orca", dir, err.Error(), false, "XYZFileWrite")
	}
	inp := O.BuildInput(mol, opt, maxCycles)
	if err := os.WriteFile(filepath.Join(dir, orcaJob+".inp"), []byte(inp), 0o644); err != nil {
		return newError(ErrCantInput, "orca", dir, err.Error(), false, "BuildInput")
	}
	O.log.Trace().Str("dir", dir).Msg("running")
	out, err := runTo(O.run, dir, O.command, []string{orcaJob + ".inp"}, orcaJob+".out")
	if err != nil {
		return runError("orca", O.keptDir(dir), err)
	}
	if !strings.Contains(out, orcaNormal) {
		return newError(ErrNotConverged, "orca", O.keptDir(dir), "abnormal termination", false, "Run")
	}
	if opt && strings.Contains(out, "The optimization did not converge") {
		return newError(ErrNotConverged, "orca", O.keptDir(dir), "geometry optimization did not converge", false, "Run")
	}
	return read(dir, out)
}

//Optimize runs a geometry optimization.
func (O *ORCA) Optimize(mol *mindless.Molecule, maxCycles int) (*mindless.Molecule, error) {
	var ret *mindless.Molecule
	err := O.calc(mol, true, maxCycles, func(dir, out string) error {
		geo, err := mindless.XYZFileRead(filepath.Join(dir, orcaJob+".xyz"))
		if err != nil {
			return newError(ErrNoGeometry, "orca", O.keptDir(dir), err.Error(), false, "XYZFileRead", "Optimize")
		}
		if geo.Len() != mol.Len() {
			return newError(ErrNoGeometry, "orca", O.keptDir(dir), "atom count changed", false, "Optimize")
		}
		energy, err := orcaEnergy(out)
		if err != nil {
			return newError(ErrNoEnergy, "orca", O.keptDir(dir), err.Error(), false, "Optimize")
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

//SinglePoint returns the DFT energy of mol.
func (O *ORCA) SinglePoint(mol *mindless.Molecule) (float64, error) {
	var energy float64
	err := O.calc(mol, false, 0, func(dir, out string) error {
		var err error
		if energy, err = orcaEnergy(out); err != nil {
			return newError(ErrNoEnergy, "orca", O.keptDir(dir), err.Error(), false, "SinglePoint")
		}
		return nil
	})
	return energy, err
}

//CheckGap runs a single point and compares the gap between the highest
//occupied and the lowest empty orbital, over both spins, with threshold.
func (O *ORCA) CheckGap(mol *mindless.Molecule, threshold float64) (bool, error) {
	var gap float64
	err := O.calc(mol, false, 0, func(dir, out string) error {
		var err error
		if gap, err = orcaGap(out); err != nil {
			return newError(ErrGapUnsupported, "orca", O.keptDir(dir), err.Error(), false, "CheckGap")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	O.log.Debug().Float64("gap", gap).Float64("threshold", threshold).Msg("HOMO-LUMO gap")
	return gap >= threshold, nil
}

//orcaEnergy returns the last "FINAL SINGLE POINT ENERGY" of the output.
func orcaEnergy(out string) (float64, error) {
	const key = "FINAL SINGLE POINT ENERGY"
	idx := strings.LastIndex(out, key)
	if idx < 0 {
		return 0, fmt.Errorf("%q not found", key)
	}
	fields := strings.Fields(out[idx+len(key):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("%q has no value", key)
	}
	return strconv.ParseFloat(fields[0], 64)
}

//orcaGap reads the last ORBITAL ENERGIES block of the output, which has
//one table for restricted calculations and one per spin otherwise:
//	  NO   OCC          E(Eh)            E(eV)
//	   0   2.0000     -18.937452      -515.3141
//It returns the gap in eV.
func orcaGap(out string) (float64, error) {
	idx := strings.LastIndex(out, "ORBITAL ENERGIES")
	if idx < 0 {
		return 0, fmt.Errorf("no orbital energies in output")
	}
	homo, lumo := math.Inf(-1), math.Inf(1)
	inTable := false
	for _, line := range strings.Split(out[idx:], "\n")[1:] {
		f := strings.Fields(line)
		if len(f) == 4 {
			if _, err := strconv.Atoi(f[0]); err == nil {
				occ, err1 := strconv.ParseFloat(f[1], 64)
				ev, err2 := strconv.ParseFloat(f[3], 64)
				if err1 == nil && err2 == nil {
					inTable = true
					if occ > 1e-6 {
						homo = math.Max(homo, ev)
					} else {
						lumo = math.Min(lumo, ev)
					}
					continue
				}
			}
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "---") || strings.HasPrefix(trimmed, "NO "):
			continue
		case strings.Contains(trimmed, "SPIN"):
			inTable = false
			continue
		}
		if inTable || !math.IsInf(homo, -1) {
			break
		}
	}
	if math.IsInf(homo, -1) || math.IsInf(lumo, 1) {
		return 0, fmt.Errorf("occupied or virtual orbitals missing")
	}
	return lumo - homo, nil
}
