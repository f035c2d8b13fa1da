/*
 * cycle.go, part of mindless.
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

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/generate"
	"github.com/rmera/mindless/refine"
)

//seedFor returns the seed of the random source of one cycle. It depends
//only on the run seed, the target and the cycle, so a seeded run gives
//the same molecules whatever the order in which the cycles run.
func (G *Generator) seedFor(target, cycle int) int64 {
	return G.seed + int64(target)*int64(G.cfg.General.MaxCycles) + int64(cycle)
}

//runCycle generates a molecule, refines it and, if requested,
//postprocesses it. The molecule is returned only if the cycle is the
//first one to claim stop. Failures of the refinement or postprocessing
//only lose the cycle; errors are returned only if they are critical, or
//if the molecule can't be generated at all.
func (G *Generator) runCycle(ctx context.Context, target, cycle int, stop *StopSignal, verbosity int) (*mindless.Molecule, error) {
	stopped := func() bool { return stop.IsSet() || ctx.Err() != nil }
	if stopped() {
		return nil, nil
	}
	if verbosity == 0 {
		G.out.printf("✔")
	} else {
		G.out.printf("Cycle %d:\n", cycle+1)
	}
	log := G.log.With().Int("molecule", target+1).Int("cycle", cycle+1).Logger()
	rng := rand.New(rand.NewSource(G.seedFor(target, cycle)))

	gen, err := generate.New(G.cfg.Generate, rng, generate.WithLogger(log))
	if err != nil {
		return nil, err
	}
	mol, err := gen.Molecule()
	if err != nil {
		return nil, fmt.Errorf("generating molecule: %w", err)
	}
	opt, err := refine.Iterative(mol, G.refine, G.cfg.Generate, G.cfg.Refine,
		refine.WithRand(rng), refine.WithLogger(log), refine.WithStop(stopped))
	if err != nil {
		return nil, G.lost(err, "Refinement", cycle, verbosity)
	}
	if G.cfg.General.Postprocess {
		if stopped() {
			return nil, nil
		}
		opt, err = refine.Postprocess(opt, G.post, G.cfg.Postprocess)
		if err != nil {
			return nil, G.lost(err, "Postprocessing", cycle, verbosity)
		}
	}
	if !stop.Claim() {
		log.Debug().Msg("molecule found, but another cycle was first")
		return nil, nil
	}
	if verbosity > 1 {
		G.out.printf("Postprocessing successful. Optimized molecule:\n")
	}
	return opt, nil
}

//lost reports a failed cycle, and returns err only if it is critical.
func (G *Generator) lost(err error, stage string, cycle, verbosity int) error {
	var crit mindless.CriticalError
	if errors.As(err, &crit) && crit.Critical() {
		return err
	}
	if errors.Is(err, refine.ErrStopped) {
		return nil
	}
	G.log.Debug().Err(err).Int("cycle", cycle+1).Str("stage", stage).Msg("cycle failed")
	if verbosity > 0 {
		G.out.printf("%s failed for cycle %d.\n", stage, cycle+1)
		if verbosity > 1 {
			G.out.printf("%v\n", err)
		}
	}
	return nil
}
