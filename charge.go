/*
 * charge.go, part of mindless.
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

import "math/rand"

//ChargeAndUHF returns a total charge and a number of unpaired electrons
//for the 0-based element indexes in atoms.
//
//Without lanthanides the molecule is closed-shell: the UHF is 0 and the
//charge has the parity of the electron count, chosen among {-1, 1} or
//{-2, 0, 2} with rng (or the global source, if rng is nil).
//
//If any lanthanide is present, each of them is taken as Ln(III), with 3
//valence electrons and its f electrons as unpaired ones (see
//LanthanideUHF). The charge is 0 if the remaining electron count is even,
//and 1 otherwise.
//
//It panics if atoms is empty.
func ChargeAndUHF(atoms []int, rng *rand.Rand) (charge, uhf int) {
	if len(atoms) == 0 {
		panic("ChargeAndUHF: no atoms given")
	}
	lanthanides := false
	for _, v := range atoms {
		if IsLanthanide(v) {
			lanthanides = true
			break
		}
	}
	if lanthanides {
		nel := 0
		for _, v := range atoms {
			if IsLanthanide(v) {
				nel += 3
				uhf += LanthanideUHF(v)
				continue
			}
			nel += v + 1
		}
		if nel%2 != 0 {
			charge = 1
		}
		return charge, uhf
	}
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	if Electrons(atoms)%2 != 0 {
		return []int{-1, 1}[intn(2)], 0
	}
	return []int{-2, 0, 2}[intn(3)], 0
}

//AssignCharge sets the charge and UHF of M using ChargeAndUHF.
func AssignCharge(M *Molecule, rng *rand.Rand) {
	M.Charge, M.UHF = ChargeAndUHF(M.Atoms, rng)
}
