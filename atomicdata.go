/*
 * atomicdata.go, part of mindless.
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

import "strings"

//MaxElement is the number of elements supported, H (0) to Rn (85).
const MaxElement = 86

//0-based indexes of the first and last lanthanides (La, Lu).
const (
	LanthanideFirst = 56
	LanthanideLast  = 70
)

//symbols holds the element symbols, indexed by atomic number minus one.
var symbols = [MaxElement]string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

//Single-bond covalent radii in Angstrom, from Pyykko and Atsumi,
//Chem. Eur. J. 15, 186 (2009). Indexed like symbols.
var covalentRadii = [MaxElement]float64{
	0.32, 0.46,
	1.33, 1.02, 0.85, 0.75, 0.71, 0.63, 0.64, 0.67,
	1.55, 1.39, 1.26, 1.16, 1.11, 1.03, 0.99, 0.96,
	1.96, 1.71, 1.48, 1.36, 1.34, 1.22, 1.19, 1.16, 1.11, 1.10, 1.12, 1.18,
	1.24, 1.21, 1.21, 1.16, 1.14, 1.17,
	2.10, 1.85, 1.63, 1.54, 1.47, 1.38, 1.28, 1.25, 1.25, 1.20, 1.28, 1.36,
	1.42, 1.40, 1.40, 1.36, 1.33, 1.31,
	2.32, 1.96, 1.80, 1.63, 1.76, 1.74, 1.73, 1.72, 1.68, 1.69, 1.68, 1.67,
	1.66, 1.65, 1.64, 1.70, 1.62, 1.52, 1.46, 1.37, 1.31, 1.29, 1.22, 1.23,
	1.24, 1.33, 1.44, 1.44, 1.51, 1.45, 1.47, 1.42,
}

//Typical number of unpaired f electrons of each Ln(III) ion, La to Lu.
//These are empirical defaults, not derived from a formula.
var lanthanideUHF = [LanthanideLast - LanthanideFirst + 1]int{
	0, // La
	1, // Ce
	2, // Pr
	3, // Nd
	4, // Pm
	5, // Sm
	6, // Eu
	7, // Gd
	6, // Tb
	5, // Dy
	4, // Ho
	3, // Er
	2, // Tm
	1, // Yb
	0, // Lu
}

var symbolIndex = func() map[string]int {
	m := make(map[string]int, MaxElement)
	for i, s := range symbols {
		m[strings.ToLower(s)] = i
	}
	return m
}()

//Symbol returns the element symbol for the 0-based element index i.
//It panics if i is out of range.
func Symbol(i int) string {
	return symbols[i]
}

//ElementIndex returns the 0-based element index for a symbol. The
//lookup is case-insensitive.
func ElementIndex(symbol string) (int, bool) {
	i, ok := symbolIndex[strings.ToLower(strings.TrimSpace(symbol))]
	return i, ok
}

//CovalentRadius returns the covalent radius, in A, of the element i.
func CovalentRadius(i int) float64 {
	return covalentRadii[i]
}

//IsLanthanide reports whether the 0-based element index belongs to La-Lu.
func IsLanthanide(i int) bool {
	return i >= LanthanideFirst && i <= LanthanideLast
}

//LanthanideUHF returns the default number of unpaired electrons
//for the lanthanide i. It panics if i is not a lanthanide.
func LanthanideUHF(i int) int {
	if !IsLanthanide(i) {
		panic("LanthanideUHF: element is not a lanthanide")
	}
	return lanthanideUHF[i-LanthanideFirst]
}
