/*
 * elements.go, part of mindless.
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

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmera/mindless"
)

//Unbounded is the Max of a Bounds with no upper limit.
const Unbounded = -1

//Bounds is the allowed number of atoms of one element.
type Bounds struct {
	Min int
	Max int //Unbounded for no limit
}

//Allows reports whether n atoms are within B.
func (B Bounds) Allows(n int) bool {
	return n >= B.Min && (B.Max == Unbounded || n <= B.Max)
}

//Composition parses ElementComposition into bounds per 0-based element
//index. Accepted items are "C:1-3", "H:2-*", "O:*-2" and "N:1" (exactly one).
func (G Generate) Composition() (map[int]Bounds, error) {
	comp := make(map[int]Bounds)
	for _, item := range splitList(G.ElementComposition) {
		sym, rng, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("element_composition: %q is not element:min-max", item)
		}
		el, err := parseElement(sym)
		if err != nil {
			return nil, fmt.Errorf("element_composition: %w", err)
		}
		if _, dup := comp[el]; dup {
			return nil, fmt.Errorf("element_composition: element %s given twice", mindless.Symbol(el))
		}
		lo, hi, found := strings.Cut(strings.TrimSpace(rng), "-")
		if !found {
			hi = lo
		}
		b := Bounds{Max: Unbounded}
		if b.Min, err = parseBound(lo, 0); err != nil {
			return nil, fmt.Errorf("element_composition: %s: %w", item, err)
		}
		if b.Max, err = parseBound(hi, Unbounded); err != nil {
			return nil, fmt.Errorf("element_composition: %s: %w", item, err)
		}
		if b.Max != Unbounded && b.Max < b.Min {
			return nil, fmt.Errorf("element_composition: %s: max is lower than min", item)
		}
		comp[el] = b
	}
	return comp, nil
}

//Forbidden parses ForbiddenElements into a set of 0-based element
//indexes. Numbers are atomic numbers (1-based), as in the periodic table.
func (G Generate) Forbidden() (map[int]bool, error) {
	forb := make(map[int]bool)
	for _, item := range splitList(G.ForbiddenElements) {
		lo, hi, isRange := strings.Cut(item, "-")
		if !isRange {
			el, err := parseElement(item)
			if err != nil {
				return nil, fmt.Errorf("forbidden_elements: %w", err)
			}
			forb[el] = true
			continue
		}
		first, err := parseZ(lo, 1)
		if err != nil {
			return nil, fmt.Errorf("forbidden_elements: %s: %w", item, err)
		}
		last, err := parseZ(hi, mindless.MaxElement)
		if err != nil {
			return nil, fmt.Errorf("forbidden_elements: %s: %w", item, err)
		}
		if last < first {
			return nil, fmt.Errorf("forbidden_elements: %s: empty range", item)
		}
		for z := first; z <= last; z++ {
			forb[z-1] = true
		}
	}
	return forb, nil
}

//CheckComposition returns an error if the element counts in counts (per
//0-based element index) violate ElementComposition or ForbiddenElements.
func (G Generate) CheckComposition(counts map[int]int) error {
	comp, err := G.Composition()
	if err != nil {
		return err
	}
	forb, err := G.Forbidden()
	if err != nil {
		return err
	}
	for el, n := range counts {
		if n > 0 && forb[el] {
			return fmt.Errorf("forbidden element %s present", mindless.Symbol(el))
		}
	}
	for el, b := range comp {
		if !b.Allows(counts[el]) {
			return fmt.Errorf("%d atoms of %s, composition allows %s", counts[el], mindless.Symbol(el), b)
		}
	}
	return nil
}

func (B Bounds) String() string {
	if B.Max == Unbounded {
		return fmt.Sprintf("%d-*", B.Min)
	}
	return fmt.Sprintf("%d-%d", B.Min, B.Max)
}

func (G Generate) checkElements() error {
	comp, err := G.Composition()
	if err != nil {
		return err
	}
	forb, err := G.Forbidden()
	if err != nil {
		return err
	}
	if len(forb) >= mindless.MaxElement {
		return fmt.Errorf("forbidden_elements forbids every element")
	}
	mins := 0
	for el, b := range comp {
		mins += b.Min
		if forb[el] && b.Min > 0 {
			return fmt.Errorf("element %s is both required and forbidden", mindless.Symbol(el))
		}
	}
	if mins > G.MaxNumAtoms {
		return fmt.Errorf("element_composition requires %d atoms but max_num_atoms is %d", mins, G.MaxNumAtoms)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

//parseElement takes a symbol or an atomic number and returns the 0-based
//element index.
func parseElement(s string) (int, error) {
	s = strings.TrimSpace(s)
	if el, ok := mindless.ElementIndex(s); ok {
		return el, nil
	}
	z, err := strconv.Atoi(s)
	if err != nil || z < 1 || z > mindless.MaxElement {
		return 0, fmt.Errorf("unknown element %q", s)
	}
	return z - 1, nil
}

func parseBound(s string, star int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "*" || s == "" {
		return star, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return n, nil
}

func parseZ(s string, star int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return star, nil
	}
	el, err := parseElement(s)
	if err != nil {
		return 0, err
	}
	return el + 1, nil
}
