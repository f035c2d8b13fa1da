/*
 * bonds.go, part of mindless.
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
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//Distance returns the distance between atoms i and j of M.
func (M *Molecule) Distance(i, j int) float64 {
	return floats.Distance(M.Coords.RawRowView(i), M.Coords.RawRowView(j), 2)
}

//Bonded reports whether atoms i and j are closer than scale times the
//sum of their covalent radii.
func (M *Molecule) Bonded(i, j int, scale float64) bool {
	return M.Distance(i, j) <= scale*(covalentRadii[M.Atoms[i]]+covalentRadii[M.Atoms[j]])
}

//Fragments returns the indexes of the atoms in each covalently-bound
//fragment of M, largest fragment first. Two atoms are bound if Bonded with
//the given scale.
func Fragments(M *Molecule, scale float64) [][]int {
	g := simple.NewUndirectedGraph()
	n := M.Len()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if M.Bonded(i, j, scale) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	comps := topo.ConnectedComponents(g)
	frags := make([][]int, 0, len(comps))
	for _, c := range comps {
		idx := make([]int, len(c))
		for k, node := range c {
			idx[k] = int(node.ID())
		}
		sort.Ints(idx)
		frags = append(frags, idx)
	}
	//largest first, ties by lowest first atom so the order is deterministic.
	sort.Slice(frags, func(a, b int) bool {
		if len(frags[a]) != len(frags[b]) {
			return len(frags[a]) > len(frags[b])
		}
		return frags[a][0] < frags[b][0]
	})
	return frags
}

//Clashes returns the first pair of atoms closer than mindist, and
//whether such a pair exists.
func Clashes(M *Molecule, mindist float64) ([2]int, bool) {
	for i := 0; i < M.Len(); i++ {
		for j := i + 1; j < M.Len(); j++ {
			if M.Distance(i, j) < mindist {
				return [2]int{i, j}, true
			}
		}
	}
	return [2]int{}, false
}

//DistancesOK reports whether every pair of atoms is at least scale times
//the sum of their covalent radii apart.
func DistancesOK(M *Molecule, scale float64) bool {
	for i := 0; i < M.Len(); i++ {
		for j := i + 1; j < M.Len(); j++ {
			if M.Distance(i, j) < scale*(covalentRadii[M.Atoms[i]]+covalentRadii[M.Atoms[j]]) {
				return false
			}
		}
	}
	return true
}
