/*
 * generator.go, part of mindless.
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

//Package generator runs the generation of mindless molecules: for each
//requested molecule it starts up to general.max_cycles attempts, on a
//bounded number of goroutines, and keeps the successful attempt with the
//lowest cycle index.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
	"github.com/rmera/mindless/qm"
)

//ErrExhausted means that no cycle produced a molecule for one of the
//targets. It ends the whole run.
var ErrExhausted = errors.New("molecule generation failed for all cycles")

//ExhaustedError tells which target exhausted its cycles. It matches
//ErrExhausted with errors.Is.
type ExhaustedError struct {
	Target int //0-based
	Cycles int
}

func (err *ExhaustedError) Error() string {
	return fmt.Sprintf("%v (%d cycles) for molecule %d", ErrExhausted, err.Cycles, err.Target+1)
}

func (err *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

//CycleFunc runs one attempt, the cycle cycle of the target target, and
//returns the molecule obtained, or nil. Only fatal errors are returned.
type CycleFunc func(ctx context.Context, target, cycle int, stop *StopSignal, verbosity int) (*mindless.Molecule, error)

//Generator produces the molecules of one run. Its configuration is not
//modified after New.
type Generator struct {
	cfg       config.Config
	refine    qm.Engine
	post      qm.Engine
	cores     int
	verbosity int //verbosity of the cycles, 0 when running in parallel
	seed      int64
	log       zerolog.Logger
	out       *printer
	cycle     CycleFunc
}

type options struct {
	log    zerolog.Logger
	out    io.Writer
	numCPU int
	cycle  CycleFunc
}

//Option configures a Generator.
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

//WithOutput sets where the progress of the run is printed. The default
//is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

//WithNumCPU sets the number of available cores, instead of
//runtime.NumCPU().
func WithNumCPU(n int) Option {
	return func(o *options) { o.numCPU = n }
}

//WithCycleFunc replaces the function that runs each cycle.
func WithCycleFunc(f CycleFunc) Option {
	return func(o *options) { o.cycle = f }
}

//New returns a Generator for cfg, refining molecules with refine and,
//if general.postprocess is set, postprocessing them with post.
//The parallelism is clamped to the available cores, and the verbosity of
//the cycles is set to 0 if more than one core is used. Both changes are
//logged as warnings.
func New(cfg config.Config, refine, post qm.Engine, opts ...Option) (*Generator, error) {
	o := options{log: zerolog.Nop(), out: os.Stdout, numCPU: runtime.NumCPU()}
	for _, f := range opts {
		f(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if refine == nil {
		return nil, errors.New("no refinement engine given")
	}
	if cfg.General.Postprocess && post == nil {
		return nil, errors.New("postprocessing requested but no postprocessing engine given")
	}
	if o.numCPU < 1 {
		o.numCPU = 1
	}
	G := &Generator{
		cfg:       cfg,
		refine:    refine,
		post:      post,
		cores:     min(cfg.General.Parallel, o.numCPU),
		verbosity: cfg.General.Verbosity,
		seed:      cfg.General.Seed,
		log:       o.log,
		out:       &printer{w: o.out},
		cycle:     o.cycle,
	}
	if cfg.General.Parallel > o.numCPU {
		G.log.Warn().Int("requested", cfg.General.Parallel).Int("available", o.numCPU).
			Int("using", G.cores).Msg("more cores requested than available")
	}
	if G.cores > 1 && G.verbosity > 0 {
		G.log.Warn().Int("cores", G.cores).
			Msg("parallel runs disable verbosity during the iterative search; set verbosity 0 or parallel 1 to avoid this warning")
		G.verbosity = 0
	}
	if G.seed == 0 {
		G.seed = rand.Int63()
		G.log.Info().Int64("seed", G.seed).Msg("random seed drawn, set general.seed to repeat this run")
	}
	if G.cycle == nil {
		G.cycle = G.runCycle
	}
	return G, nil
}

//Cores returns the number of cycles run at the same time.
func (G *Generator) Cores() int { return G.cores }

//Run produces general.num_molecules molecules, one after the other. It
//fails if any of them can't be obtained in general.max_cycles cycles, with
//an *ExhaustedError, or if ctx is canceled.
func (G *Generator) Run(ctx context.Context) ([]*mindless.Molecule, error) {
	if G.cfg.General.Verbosity > 0 {
		G.out.printf("Running with %d cores.\n", G.cores)
	}
	mols := make([]*mindless.Molecule, 0, G.cfg.General.NumMolecules)
	for target := 0; target < G.cfg.General.NumMolecules; target++ {
		mol, cycles, err := G.target(ctx, target)
		if err != nil {
			return nil, err
		}
		G.log.Info().Int("molecule", target+1).Int("cycles", cycles).Str("name", mol.Name).
			Str("formula", mol.Formula()).Msg("molecule found")
		if G.cfg.General.Verbosity > 0 {
			G.out.printf("\nOptimized mindless molecule found in %d cycles.\n%s", cycles, mol)
		}
		mols = append(mols, mol)
	}
	return mols, nil
}

//target runs all the cycles for one molecule and returns the result of
//the lowest cycle that got one, and the number of cycles it took.
func (G *Generator) target(ctx context.Context, target int) (*mindless.Molecule, int, error) {
	stop := new(StopSignal)
	results := make([]*mindless.Molecule, G.cfg.General.MaxCycles)
	if G.verbosity == 0 {
		G.out.printf("Cycle... ")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(G.cores)
	for i := range results {
		i := i
		g.Go(func() error {
			mol, err := G.cycle(gctx, target, i, stop, G.verbosity)
			if err != nil {
				return fmt.Errorf("molecule %d, cycle %d: %w", target+1, i+1, err)
			}
			results[i] = mol
			return nil
		})
	}
	err := g.Wait()
	if G.verbosity == 0 {
		G.out.printf("\n")
	}
	if err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	for i, mol := range results {
		if mol != nil {
			return mol, i + 1, nil
		}
	}
	return nil, 0, &ExhaustedError{Target: target, Cycles: len(results)}
}
