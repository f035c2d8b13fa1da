/*
 * stop.go, part of mindless.
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

package generator

import "sync/atomic"

//StopSignal is shared by all the cycles working on one molecule. It is
//set once, by the first cycle that claims a result; the others check it
//and stop at their next checkpoint. The zero value is unset.
type StopSignal struct {
	set atomic.Bool
}

//IsSet reports whether a cycle has already claimed the molecule.
func (S *StopSignal) IsSet() bool {
	return S.set.Load()
}

//Claim sets the signal and returns true, if it was not set. Only one
//caller can ever get true.
func (S *StopSignal) Claim() bool {
	return S.set.CompareAndSwap(false, true)
}
