/*
 * molecule.go, part of mindless.
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
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Molecule is a set of atoms, given as 0-based element indexes (atomic
//number minus one), with their cartesian coordinates in Angstrom, a total
//charge and a number of unpaired electrons (UHF).
type Molecule struct {
	Name   string
	Atoms  []int
	Coords *mat.Dense //Len() x 3
	Charge int
	UHF    int

	energy    float64
	hasEnergy bool
}

//NewMolecule returns a molecule with the given atoms and coordinates. It
//returns an error if the dimensions don't match or an element is unknown.
func NewMolecule(name string, atoms []int, coords *mat.Dense) (*Molecule, error) {
	if len(atoms) == 0 {
		return nil, fmt.Errorf("molecule %q has no atoms", name)
	}
	if coords == nil {
		return nil, fmt.Errorf("molecule %q has no coordinates", name)
	}
	if r, c := coords.Dims(); r != len(atoms) || c != 3 {
		return nil, fmt.Errorf("molecule %q: %d atoms but %dx%d coordinates", name, len(atoms), r, c)
	}
	for i, v := range atoms {
		if v < 0 || v >= MaxElement {
			return nil, fmt.Errorf("molecule %q: atom %d has unsupported element index %d", name, i, v)
		}
	}
	return &Molecule{Name: name, Atoms: atoms, Coords: coords}, nil
}

//Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

//Energy returns the last energy assigned to the molecule, in Hartree, and
//whether one was assigned at all.
func (M *Molecule) Energy() (float64, bool) {
	return M.energy, M.hasEnergy
}

//SetEnergy sets the energy of the molecule, in Hartree.
func (M *Molecule) SetEnergy(e float64) {
	M.energy = e
	M.hasEnergy = true
}

//Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	N := *M
	N.Atoms = make([]int, len(M.Atoms))
	copy(N.Atoms, M.Atoms)
	if M.Coords != nil {
		N.Coords = mat.DenseCopyOf(M.Coords)
	}
	return &N
}

//Sub returns a new molecule with only the atoms in indexes, in that
//order. The charge, UHF and energy are not carried over.
func (M *Molecule) Sub(indexes []int) *Molecule {
	atoms := make([]int, len(indexes))
	coords := mat.NewDense(len(indexes), 3, nil)
	for k, i := range indexes {
		atoms[k] = M.Atoms[i]
		coords.SetRow(k, M.Coords.RawRowView(i))
	}
	return &Molecule{Name: M.Name, Atoms: atoms, Coords: coords}
}

//Electrons returns the number of electrons of the neutral molecule.
func (M *Molecule) Electrons() int {
	return Electrons(M.Atoms)
}

//Electrons returns the sum of the atomic numbers for the 0-based element
//indexes in atoms.
func Electrons(atoms []int) int {
	n := 0
	for _, v := range atoms {
		n += v + 1
	}
	return n
}

//Composition returns the number of atoms of each element present.
func (M *Molecule) Composition() map[int]int {
	c := make(map[int]int)
	for _, v := range M.Atoms {
		c[v]++
	}
	return c
}

//Symbols returns the element symbol of each atom.
func (M *Molecule) Symbols() []string {
	s := make([]string, len(M.Atoms))
	for i, v := range M.Atoms {
		s[i] = symbols[v]
	}
	return s
}

//Formula returns the sum formula, in order of increasing atomic number
//(e.g. H4C1O1).
func (M *Molecule) Formula() string {
	comp := M.Composition()
	elems := make([]int, 0, len(comp))
	for k := range comp {
		elems = append(elems, k)
	}
	sort.Ints(elems)
	var b strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&b, "%s%d", symbols[e], comp[e])
	}
	return b.String()
}

func (M *Molecule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Molecule: %s\n", M.Name)
	fmt.Fprintf(&b, "# atoms: %d\n", M.Len())
	fmt.Fprintf(&b, "Sum formula: %s\n", M.Formula())
	fmt.Fprintf(&b, "Charge: %d\n", M.Charge)
	fmt.Fprintf(&b, "UHF: %d\n", M.UHF)
	if M.hasEnergy {
		fmt.Fprintf(&b, "Energy: %.8f Eh\n", M.energy)
	}
	return b.String()
}
