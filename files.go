/*
 * files.go, part of mindless.
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

package mindless

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//XYZWrite writes M in XYZ format to w. The comment line holds the name
//and, if present, the energy.
func XYZWrite(w io.Writer, M *Molecule) error {
	if M == nil || M.Coords == nil {
		return fmt.Errorf("XYZWrite: nil molecule or coordinates")
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", M.Len())
	comment := M.Name
	if e, ok := M.Energy(); ok {
		comment = fmt.Sprintf("%s energy: %.12f", M.Name, e)
	}
	fmt.Fprintln(bw, strings.TrimSpace(comment))
	for i, v := range M.Atoms {
		c := M.Coords.RawRowView(i)
		fmt.Fprintf(bw, "%-2s %14.8f %14.8f %14.8f\n", symbols[v], c[0], c[1], c[2])
	}
	return bw.Flush()
}

//XYZFileWrite writes M to the XYZ file name, overwriting it if it exists.
func XYZFileWrite(name string, M *Molecule) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := XYZWrite(out, M); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

//XYZRead reads the first frame of an XYZ stream. Elements may be given
//as symbols or atomic numbers.
func XYZRead(r io.Reader) (*Molecule, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("XYZRead: empty input")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || natoms <= 0 {
		return nil, fmt.Errorf("XYZRead: ill-formatted atom count %q", sc.Text())
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("XYZRead: missing comment line")
	}
	name := ""
	if f := strings.Fields(sc.Text()); len(f) > 0 {
		name = f[0]
	}
	atoms := make([]int, natoms)
	coords := mat.NewDense(natoms, 3, nil)
	for i := 0; i < natoms; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("XYZRead: expected %d atoms, got %d", natoms, i)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("XYZRead: line %d ill-formed: %q", i+3, sc.Text())
		}
		el, ok := ElementIndex(fields[0])
		if !ok {
			z, err := strconv.Atoi(fields[0])
			if err != nil || z < 1 || z > MaxElement {
				return nil, fmt.Errorf("XYZRead: unknown element %q", fields[0])
			}
			el = z - 1
		}
		atoms[i] = el
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("XYZRead: line %d: %w", i+3, err)
			}
			coords.Set(i, j, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewMolecule(name, atoms, coords)
}

//XYZFileRead reads the XYZ file name.
func XYZFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return XYZRead(f)
}

//ChargeFilesWrite writes the charge and UHF of M to the files base.CHRG
//and base.UHF in dir, as read by xtb. With skipZero, files for a zero value
//are not written.
func ChargeFilesWrite(dir, base string, M *Molecule, skipZero bool) error {
	for _, f := range []struct {
		ext string
		val int
	}{{".CHRG", M.Charge}, {".UHF", M.UHF}} {
		if skipZero && f.val == 0 {
			continue
		}
		name := filepath.Join(dir, base+f.ext)
		if err := os.WriteFile(name, []byte(strconv.Itoa(f.val)+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}
