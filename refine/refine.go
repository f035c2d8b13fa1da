/*
 * refine.go, part of mindless.
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

//Package refine turns a random molecule into a plausible one, optimizing
//it with a qm.Engine and keeping the largest fragment until a single
//bound molecule remains, and optionally refines the result again with a
//second engine.
package refine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
	"github.com/rmera/mindless/qm"
)

var (
	//ErrRefinementFailed means the molecule could not be refined into a
	//valid one. Only the current attempt is lost.
	ErrRefinementFailed = errors.New("refinement failed")
	//ErrPostprocessFailed means the second-pass engine failed. The
	//attempt is lost, the refined molecule is not used either.
	ErrPostprocessFailed = errors.New("postprocessing failed")
	//ErrStopped means the refinement was abandoned because the function
	//given with WithStop returned true.
	ErrStopped = errors.New("refinement stopped")
)

type settings struct {
	log  zerolog.Logger
	rng  *rand.Rand
	stop func() bool
}

//Option configures Iterative.
type Option func(*settings)

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

//WithRand sets the random source for charge reassignment and
//perturbations. The source must not be shared with other goroutines.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

//WithStop sets a function checked before each engine call. When it
//returns true, Iterative gives up with ErrStopped.
func WithStop(stop func() bool) Option {
	return func(s *settings) { s.stop = stop }
}

func newSettings(opts []Option) settings {
	s := settings{log: zerolog.Nop(), stop: func() bool { return false }}
	for _, o := range opts {
		o(&s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return s
}

func failed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRefinementFailed, fmt.Sprintf(format, args...))
}

//Iterative refines mol with engine, for at most ref.MaxFragCycles
//fragmentation cycles. Each cycle runs a single point, to make sure the
//SCF converges, and a geometry optimization. The optimized structure
//must have no pair of atoms closer than ref.ClashThreshold. If it has
//more than one fragment, the largest one is kept, with a new charge and
//UHF, and the next cycle starts from it. A single fragment ends the
//refinement, which succeeds if the molecule still satisfies the element
//composition and its HOMO-LUMO gap is at least ref.HLGap.
//
//When ref.PerturbOnFailure is set, an engine failure or an optimized
//geometry with atoms closer than ref.ClashThreshold displaces every atom
//randomly by up to ref.PerturbAmplitude and spends a cycle instead of
//ending the refinement. Critical engine errors always end it.
//
//mol is not modified. The errors wrap ErrRefinementFailed or ErrStopped.
func Iterative(mol *mindless.Molecule, engine qm.Engine, gen config.Generate, ref config.Refine, opts ...Option) (*mindless.Molecule, error) {
	s := newSettings(opts)
	log := s.log.With().Str("molecule", mol.Name).Logger()
	cur := mol.Copy()
	var done *mindless.Molecule
	for cycle := 1; cycle <= ref.MaxFragCycles; cycle++ {
		if s.stop() {
			return nil, ErrStopped
		}
		log.Debug().Int("cycle", cycle).Str("formula", cur.Formula()).Msg("fragmentation cycle")
		opt, err := optimize(cur, engine)
		if err != nil {
			var crit mindless.CriticalError
			if !ref.PerturbOnFailure || (errors.As(err, &crit) && crit.Critical()) {
				return nil, fmt.Errorf("%w: cycle %d: %w", ErrRefinementFailed, cycle, err)
			}
			log.Debug().Err(err).Int("cycle", cycle).Msg("engine failed, perturbing geometry")
			perturb(cur, ref.PerturbAmplitude, s.rng)
			continue
		}
		if pair, clash := mindless.Clashes(opt, ref.ClashThreshold); clash {
			if !ref.PerturbOnFailure {
				return nil, failed("atoms %d and %d closer than %.2f A", pair[0], pair[1], ref.ClashThreshold)
			}
			log.Debug().Ints("atoms", pair[:]).Int("cycle", cycle).Msg("atoms clash, perturbing geometry")
			cur = opt
			perturb(cur, ref.PerturbAmplitude, s.rng)
			continue
		}
		frags := mindless.Fragments(opt, ref.ScaleFragmentDetection)
		if len(frags) == 1 {
			done = opt
			break
		}
		log.Debug().Int("cycle", cycle).Int("fragments", len(frags)).Int("kept", len(frags[0])).Msg("molecule fragmented")
		cur = opt.Sub(frags[0])
		mindless.AssignCharge(cur, s.rng)
		if cur.Len() < gen.MinNumAtoms {
			return nil, failed("largest fragment has %d atoms, fewer than %d", cur.Len(), gen.MinNumAtoms)
		}
		if err := gen.CheckComposition(cur.Composition()); err != nil {
			return nil, failed("largest fragment: %v", err)
		}
	}
	if done == nil {
		return nil, failed("no single fragment after %d cycles", ref.MaxFragCycles)
	}
	if err := gen.CheckComposition(done.Composition()); err != nil {
		return nil, failed("%v", err)
	}
	if s.stop() {
		return nil, ErrStopped
	}
	ok, err := engine.CheckGap(done, ref.HLGap)
	switch {
	case errors.Is(err, qm.ErrGapUnsupported):
		log.Warn().Str("engine", engine.Name()).Msg("HOMO-LUMO gap not available, not checked")
	case err != nil:
		return nil, fmt.Errorf("%w: gap check: %w", ErrRefinementFailed, err)
	case !ok:
		return nil, failed("HOMO-LUMO gap below %.2f eV", ref.HLGap)
	}
	log.Debug().Str("formula", done.Formula()).Msg("refinement converged")
	return done, nil
}

//optimize requires a converged single point before optimizing mol.
func optimize(mol *mindless.Molecule, engine qm.Engine) (*mindless.Molecule, error) {
	if _, err := engine.SinglePoint(mol); err != nil {
		return nil, fmt.Errorf("single point: %w", err)
	}
	opt, err := engine.Optimize(mol, 0)
	if err != nil {
		return nil, fmt.Errorf("optimization: %w", err)
	}
	return opt, nil
}

func perturb(mol *mindless.Molecule, amplitude float64, rng *rand.Rand) {
	r, c := mol.Coords.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			mol.Coords.Set(i, j, mol.Coords.At(i, j)+(2*rng.Float64()-1)*amplitude)
		}
	}
}

//Postprocess refines mol with a second engine: a geometry optimization
//of at most cfg.OptCycles steps if cfg.Optimize is set, otherwise a
//single point. It returns a new molecule with the resulting energy. Errors
//wrap ErrPostprocessFailed.
func Postprocess(mol *mindless.Molecule, engine qm.Engine, cfg config.Postprocess) (*mindless.Molecule, error) {
	if cfg.Optimize {
		opt, err := engine.Optimize(mol, cfg.OptCycles)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPostprocessFailed, err)
		}
		return opt, nil
	}
	energy, err := engine.SinglePoint(mol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPostprocessFailed, err)
	}
	ret := mol.Copy()
	ret.SetEnergy(energy)
	return ret, nil
}
