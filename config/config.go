/*
 * config.go, part of mindless.
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

//Package config holds the configuration of a generation run. A Config
//is built once (defaults, then a TOML file, environment and flags) and is
//read-only afterwards; it is shared by all the workers of a run.
package config

import (
	"errors"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

//Engine names accepted for refine.engine and postprocess.engine.
var EngineNames = []string{"xtb", "orca"}

type General struct {
	Verbosity    int    `mapstructure:"verbosity" toml:"verbosity"`
	PrintConfig  bool   `mapstructure:"print_config" toml:"print_config"`
	Postprocess  bool   `mapstructure:"postprocess" toml:"postprocess"`
	Parallel     int    `mapstructure:"parallel" toml:"parallel"`
	NumMolecules int    `mapstructure:"num_molecules" toml:"num_molecules"`
	MaxCycles    int    `mapstructure:"max_cycles" toml:"max_cycles"`
	Seed         int64  `mapstructure:"seed" toml:"seed"` //0 means a random seed
	WriteXYZ     bool   `mapstructure:"write_xyz" toml:"write_xyz"`
	OutputDir    string `mapstructure:"output_dir" toml:"output_dir"`
}

type Generate struct {
	MinNumAtoms           int     `mapstructure:"min_num_atoms" toml:"min_num_atoms"`
	MaxNumAtoms           int     `mapstructure:"max_num_atoms" toml:"max_num_atoms"`
	InitScaling           float64 `mapstructure:"init_scaling" toml:"init_scaling"`
	IncreaseScalingFactor float64 `mapstructure:"increase_scaling_factor" toml:"increase_scaling_factor"`
	ScaleMinimalDistance  float64 `mapstructure:"scale_minimal_distance" toml:"scale_minimal_distance"`
	//ElementComposition is a comma-separated list of element:min-max,
	//e.g. "C:1-3, H:2-*". A * means no bound.
	ElementComposition string `mapstructure:"element_composition" toml:"element_composition"`
	//ForbiddenElements is a comma-separated list of symbols, atomic
	//numbers or ranges of atomic numbers, e.g. "57-71, 81-*, Na".
	ForbiddenElements string `mapstructure:"forbidden_elements" toml:"forbidden_elements"`
}

type Refine struct {
	Engine                 string  `mapstructure:"engine" toml:"engine"`
	MaxFragCycles          int     `mapstructure:"max_frag_cycles" toml:"max_frag_cycles"`
	HLGap                  float64 `mapstructure:"hlgap" toml:"hlgap"` //eV
	ScaleFragmentDetection float64 `mapstructure:"scale_fragment_detection" toml:"scale_fragment_detection"`
	ClashThreshold         float64 `mapstructure:"clash_threshold" toml:"clash_threshold"` //A
	PerturbOnFailure       bool    `mapstructure:"perturb_on_failure" toml:"perturb_on_failure"`
	PerturbAmplitude       float64 `mapstructure:"perturb_amplitude" toml:"perturb_amplitude"` //A
}

type Postprocess struct {
	Engine    string `mapstructure:"engine" toml:"engine"`
	Optimize  bool   `mapstructure:"optimize" toml:"optimize"`
	OptCycles int    `mapstructure:"opt_cycles" toml:"opt_cycles"` //0 means the engine default
	Debug     bool   `mapstructure:"debug" toml:"debug"`
}

type XTB struct {
	Path  string `mapstructure:"xtb_path" toml:"xtb_path"`
	Level int    `mapstructure:"level" toml:"level"`
}

type ORCA struct {
	Path       string `mapstructure:"orca_path" toml:"orca_path"`
	Functional string `mapstructure:"functional" toml:"functional"`
	Basis      string `mapstructure:"basis" toml:"basis"`
	GridSize   int    `mapstructure:"gridsize" toml:"gridsize"`
	SCFCycles  int    `mapstructure:"scf_cycles" toml:"scf_cycles"`
}

//Config is the full configuration of a run.
type Config struct {
	General     General     `mapstructure:"general" toml:"general"`
	Generate    Generate    `mapstructure:"generate" toml:"generate"`
	Refine      Refine      `mapstructure:"refine" toml:"refine"`
	Postprocess Postprocess `mapstructure:"postprocess" toml:"postprocess"`
	XTB         XTB         `mapstructure:"xtb" toml:"xtb"`
	ORCA        ORCA        `mapstructure:"orca" toml:"orca"`
}

//Default returns the default configuration.
func Default() Config {
	return Config{
		General: General{
			Verbosity:    1,
			Parallel:     1,
			NumMolecules: 1,
			MaxCycles:    200,
			WriteXYZ:     true,
			OutputDir:    ".",
		},
		Generate: Generate{
			MinNumAtoms:           2,
			MaxNumAtoms:           10,
			InitScaling:           3.0,
			IncreaseScalingFactor: 1.3,
			ScaleMinimalDistance:  0.8,
		},
		Refine: Refine{
			Engine:                 "xtb",
			MaxFragCycles:          10,
			HLGap:                  0.5,
			ScaleFragmentDetection: 1.25,
			ClashThreshold:         0.5,
			PerturbAmplitude:       0.2,
		},
		Postprocess: Postprocess{
			Engine:   "orca",
			Optimize: true,
		},
		XTB: XTB{Level: 2},
		ORCA: ORCA{
			Functional: "PBE",
			Basis:      "def2-SVP",
			GridSize:   1,
			SCFCycles:  100,
		},
	}
}

//Validate checks every field of C and returns all the problems found,
//joined.
func (C Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	g := C.General
	check(g.Verbosity >= 0, "general.verbosity must be >= 0, got %d", g.Verbosity)
	check(g.Parallel >= 1, "general.parallel must be >= 1, got %d", g.Parallel)
	check(g.NumMolecules >= 1, "general.num_molecules must be >= 1, got %d", g.NumMolecules)
	check(g.MaxCycles >= 1, "general.max_cycles must be >= 1, got %d", g.MaxCycles)

	gen := C.Generate
	check(gen.MinNumAtoms >= 1, "generate.min_num_atoms must be >= 1, got %d", gen.MinNumAtoms)
	check(gen.MaxNumAtoms >= gen.MinNumAtoms, "generate.max_num_atoms (%d) must be >= min_num_atoms (%d)", gen.MaxNumAtoms, gen.MinNumAtoms)
	check(gen.InitScaling > 0, "generate.init_scaling must be > 0, got %g", gen.InitScaling)
	check(gen.IncreaseScalingFactor > 1, "generate.increase_scaling_factor must be > 1, got %g", gen.IncreaseScalingFactor)
	check(gen.ScaleMinimalDistance > 0, "generate.scale_minimal_distance must be > 0, got %g", gen.ScaleMinimalDistance)
	if err := gen.checkElements(); err != nil {
		errs = append(errs, err)
	}

	r := C.Refine
	check(isEngine(r.Engine), "refine.engine must be one of %v, got %q", EngineNames, r.Engine)
	check(r.MaxFragCycles >= 1, "refine.max_frag_cycles must be >= 1, got %d", r.MaxFragCycles)
	check(r.HLGap >= 0, "refine.hlgap must be >= 0, got %g", r.HLGap)
	check(r.ScaleFragmentDetection > 0, "refine.scale_fragment_detection must be > 0, got %g", r.ScaleFragmentDetection)
	check(r.ClashThreshold >= 0, "refine.clash_threshold must be >= 0, got %g", r.ClashThreshold)
	check(r.PerturbAmplitude >= 0, "refine.perturb_amplitude must be >= 0, got %g", r.PerturbAmplitude)

	if g.Postprocess {
		check(isEngine(C.Postprocess.Engine), "postprocess.engine must be one of %v, got %q", EngineNames, C.Postprocess.Engine)
	}
	check(C.Postprocess.OptCycles >= 0, "postprocess.opt_cycles must be >= 0, got %d", C.Postprocess.OptCycles)

	check(C.XTB.Level >= 0 && C.XTB.Level <= 2, "xtb.level must be 0, 1 or 2, got %d", C.XTB.Level)
	check(C.ORCA.GridSize >= 1 && C.ORCA.GridSize <= 3, "orca.gridsize must be 1, 2 or 3, got %d", C.ORCA.GridSize)
	check(C.ORCA.SCFCycles >= 1, "orca.scf_cycles must be >= 1, got %d", C.ORCA.SCFCycles)
	check(C.ORCA.Functional != "", "orca.functional must not be empty")
	check(C.ORCA.Basis != "", "orca.basis must not be empty")
	return errors.Join(errs...)
}

//String renders C as TOML.
func (C Config) String() string {
	b, err := toml.Marshal(C)
	if err != nil {
		return fmt.Sprintf("<invalid configuration: %v>", err)
	}
	return string(b)
}

func isEngine(name string) bool {
	for _, v := range EngineNames {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
