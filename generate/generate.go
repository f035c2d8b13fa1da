/*
 * generate.go, part of mindless.
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

//Package generate builds random molecules: a random number of atoms of
//random elements, within the configured composition, placed at random
//in a box that grows until no two atoms overlap.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
)

//ErrUnsatisfiable means no molecule can be built with the configuration:
//not enough elements are allowed to reach the minimum number of atoms.
var ErrUnsatisfiable = errors.New("element constraints can't be satisfied")

//HydrogenWeight is the relative probability of drawing hydrogen from the
//pool, compared to any other allowed element.
const HydrogenWeight = 4.0

//maxBoxGrowth bounds the number of times the box is enlarged.
const maxBoxGrowth = 200

//Generator builds random molecules. It is not safe for concurrent use,
//as it owns its random source; use one Generator per goroutine.
type Generator struct {
	cfg       config.Generate
	rng       *rand.Rand
	comp      map[int]config.Bounds
	forbidden map[int]bool
	log       zerolog.Logger
}

//Option configures a Generator.
type Option func(*Generator)

//WithLogger sets the logger of the Generator.
func WithLogger(l zerolog.Logger) Option {
	return func(G *Generator) { G.log = l }
}

//New returns a Generator for the settings in cfg, drawing every random
//number, including the molecule names, from rng. A nil rng gets a
//randomly seeded source.
func New(cfg config.Generate, rng *rand.Rand, opts ...Option) (*Generator, error) {
	comp, err := cfg.Composition()
	if err != nil {
		return nil, err
	}
	forb, err := cfg.Forbidden()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	G := &Generator{cfg: cfg, rng: rng, comp: comp, forbidden: forb, log: zerolog.Nop()}
	for _, o := range opts {
		o(G)
	}
	return G, nil
}

//Molecule returns a new random molecule with its charge and UHF
//assigned.
func (G *Generator) Molecule() (*mindless.Molecule, error) {
	atoms, err := G.atoms()
	if err != nil {
		return nil, err
	}
	name, err := G.name()
	if err != nil {
		return nil, err
	}
	mol, err := mindless.NewMolecule(name, atoms, mat.NewDense(len(atoms), 3, nil))
	if err != nil {
		return nil, err
	}
	G.place(mol)
	mindless.AssignCharge(mol, G.rng)
	G.log.Debug().Str("name", mol.Name).Str("formula", mol.Formula()).
		Int("charge", mol.Charge).Int("uhf", mol.UHF).Msg("molecule generated")
	return mol, nil
}

//name returns "mlm_" followed by 12 hex digits of a UUID taken from the
//random source of G, so names are reproducible with a seeded source.
func (G *Generator) name() (string, error) {
	id, err := uuid.NewRandomFromReader(G.rng)
	if err != nil {
		return "", fmt.Errorf("generating molecule name: %w", err)
	}
	return "mlm_" + strings.ReplaceAll(id.String(), "-", "")[:12], nil
}

//atoms draws the elements of a new molecule. The minimum of each element
//in the composition is placed first, and the rest is drawn from the
//allowed elements.
func (G *Generator) atoms() ([]int, error) {
	lo, hi := G.cfg.MinNumAtoms, G.cfg.MaxNumAtoms
	n := lo + G.rng.Intn(hi-lo+1)
	counts := make(map[int]int)
	var atoms []int
	required := make([]int, 0, len(G.comp))
	for el := range G.comp {
		required = append(required, el)
	}
	sort.Ints(required) //map order is random, which would break seeding.
	for _, el := range required {
		for i := 0; i < G.comp[el].Min; i++ {
			atoms = append(atoms, el)
		}
		counts[el] = G.comp[el].Min
	}
	for len(atoms) < n {
		pool, weights := G.pool(counts)
		if len(pool) == 0 {
			if len(atoms) >= lo {
				break
			}
			return nil, fmt.Errorf("%w: %d atoms needed, no element left after %d", ErrUnsatisfiable, lo, len(atoms))
		}
		el := pool[pick(weights, G.rng)]
		atoms = append(atoms, el)
		counts[el]++
	}
	G.rng.Shuffle(len(atoms), func(i, j int) { atoms[i], atoms[j] = atoms[j], atoms[i] })
	return atoms, nil
}

//pool returns the elements that may still be added, given the current
//counts, and the weight of each.
func (G *Generator) pool(counts map[int]int) ([]int, []float64) {
	var pool []int
	var weights []float64
	for el := 0; el < mindless.MaxElement; el++ {
		if G.forbidden[el] {
			continue
		}
		if b, ok := G.comp[el]; ok && b.Max != config.Unbounded && counts[el] >= b.Max {
			continue
		}
		pool = append(pool, el)
		if el == 0 {
			weights = append(weights, HydrogenWeight)
		} else {
			weights = append(weights, 1)
		}
	}
	return pool, weights
}

//pick returns an index of weights with probability proportional to its
//value.
func pick(weights []float64, rng *rand.Rand) int {
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)
	r := rng.Float64() * cum[len(cum)-1]
	i := sort.SearchFloat64s(cum, r)
	if i >= len(cum) {
		i = len(cum) - 1
	}
	return i
}

//place puts the atoms of mol at random positions in a cube of edge
//InitScaling*N^(1/3), centered at the origin. The cube is enlarged by
//IncreaseScalingFactor until every pair of atoms is at least
//ScaleMinimalDistance times the sum of their covalent radii apart.
func (G *Generator) place(mol *mindless.Molecule) {
	n := mol.Len()
	edge := G.cfg.InitScaling * math.Cbrt(float64(n))
	for try := 0; ; try++ {
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				mol.Coords.Set(i, j, (G.rng.Float64()-0.5)*edge)
			}
		}
		if mindless.DistancesOK(mol, G.cfg.ScaleMinimalDistance) || try >= maxBoxGrowth {
			break
		}
		edge *= G.cfg.IncreaseScalingFactor
	}
	G.log.Trace().Float64("edge", edge).Int("atoms", n).Msg("coordinates placed")
}
