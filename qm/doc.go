/*
 * doc.go, part of mindless.
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

//Package qm runs the quantum-chemistry programs that refine mindless
//molecules: the xtb program (GFNn-xTB) and ORCA (DFT).
//
//Both engines satisfy Engine, and can optimize a geometry, compute a
//single-point energy and check the HOMO-LUMO gap of a molecule. Every
//calculation works in its own scratch directory, so a single engine can
//be shared by concurrent goroutines. Executables are located with
//Resolve, either from the configured path or from PATH.
package qm
