/*
 * load.go, part of mindless.
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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	//FileName is the configuration file looked for when none is given.
	FileName  = "mindlessgen"
	EnvPrefix = "MINDLESSGEN"
)

//NewViper returns a viper instance with the defaults of every key, the
//search paths for the configuration file and environment overrides
//(e.g. MINDLESSGEN_GENERAL_PARALLEL).
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v, Default())
	v.SetConfigName(FileName)
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

//SetDefaults registers every field of C as a default in v, so that
//environment variables are honored for keys absent from the file.
func SetDefaults(v *viper.Viper, C Config) {
	defs := map[string]any{
		"general.verbosity":     C.General.Verbosity,
		"general.print_config":  C.General.PrintConfig,
		"general.postprocess":   C.General.Postprocess,
		"general.parallel":      C.General.Parallel,
		"general.num_molecules": C.General.NumMolecules,
		"general.max_cycles":    C.General.MaxCycles,
		"general.seed":          C.General.Seed,
		"general.write_xyz":     C.General.WriteXYZ,
		"general.output_dir":    C.General.OutputDir,

		"generate.min_num_atoms":           C.Generate.MinNumAtoms,
		"generate.max_num_atoms":           C.Generate.MaxNumAtoms,
		"generate.init_scaling":            C.Generate.InitScaling,
		"generate.increase_scaling_factor": C.Generate.IncreaseScalingFactor,
		"generate.scale_minimal_distance":  C.Generate.ScaleMinimalDistance,
		"generate.element_composition":     C.Generate.ElementComposition,
		"generate.forbidden_elements":      C.Generate.ForbiddenElements,

		"refine.engine":                   C.Refine.Engine,
		"refine.max_frag_cycles":          C.Refine.MaxFragCycles,
		"refine.hlgap":                    C.Refine.HLGap,
		"refine.scale_fragment_detection": C.Refine.ScaleFragmentDetection,
		"refine.clash_threshold":          C.Refine.ClashThreshold,
		"refine.perturb_on_failure":       C.Refine.PerturbOnFailure,
		"refine.perturb_amplitude":        C.Refine.PerturbAmplitude,

		"postprocess.engine":     C.Postprocess.Engine,
		"postprocess.optimize":   C.Postprocess.Optimize,
		"postprocess.opt_cycles": C.Postprocess.OptCycles,
		"postprocess.debug":      C.Postprocess.Debug,

		"xtb.xtb_path": C.XTB.Path,
		"xtb.level":    C.XTB.Level,

		"orca.orca_path":  C.ORCA.Path,
		"orca.functional": C.ORCA.Functional,
		"orca.basis":      C.ORCA.Basis,
		"orca.gridsize":   C.ORCA.GridSize,
		"orca.scf_cycles": C.ORCA.SCFCycles,
	}
	for k, val := range defs {
		v.SetDefault(k, val)
	}
}

//Read reads the configuration file into v: path if given, otherwise
//the first mindlessgen.toml found in the search paths. A missing default
//file is not an error. It returns the file used, if any.
func Read(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading configuration: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

//Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	C := Default()
	if err := v.Unmarshal(&C); err != nil {
		return C, fmt.Errorf("decoding configuration: %w", err)
	}
	C.Refine.Engine = strings.ToLower(C.Refine.Engine)
	C.Postprocess.Engine = strings.ToLower(C.Postprocess.Engine)
	if err := C.Validate(); err != nil {
		return C, fmt.Errorf("invalid configuration: %w", err)
	}
	return C, nil
}
