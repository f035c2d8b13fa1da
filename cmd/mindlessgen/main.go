/*
 * main.go, part of mindless.
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

//Command mindlessgen generates mindless molecules: random sets of atoms
//refined with xtb or ORCA until they become single, plausible molecules.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
	"github.com/rmera/mindless/generator"
	"github.com/rmera/mindless/qm"
)

//version is set at build time via ldflags.
var version = "0.1.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mindlessgen",
		Short: "Generate random molecules refined with quantum chemistry",
		Long: `mindlessgen builds random sets of atoms and refines them with a
quantum-chemistry engine (xtb or ORCA) until a single molecule with a
reasonable HOMO-LUMO gap remains. Several attempts can run at the same
time; for each molecule, the successful attempt with the lowest cycle
number is kept.

Settings are read from mindlessgen.toml (in the working directory or in
~/.config/mindlessgen), from MINDLESSGEN_<SECTION>_<KEY> environment
variables and from the flags, which take precedence.`,
		SilenceUsage: true,
		RunE:         run,
	}
	def := config.Default()
	f := cmd.Flags()
	f.String("config", "", "configuration file (default: ./mindlessgen.toml or ~/.config/mindlessgen/mindlessgen.toml)")
	f.IntP("verbosity", "v", def.General.Verbosity, "verbosity level, 0 to 3")
	f.IntP("parallel", "P", def.General.Parallel, "number of cycles run at the same time")
	f.IntP("num-molecules", "n", def.General.NumMolecules, "number of molecules to generate")
	f.Int("max-cycles", def.General.MaxCycles, "maximum number of cycles per molecule")
	f.Bool("print-config", false, "print the configuration and exit")
	f.Bool("postprocess", false, "postprocess every molecule with a second engine")
	f.Int64("seed", 0, "seed for the random generator (0 for a random seed)")
	f.String("engine", def.Refine.Engine, "engine for the refinement (xtb or orca)")
	f.String("postprocess-engine", def.Postprocess.Engine, "engine for the postprocessing (xtb or orca)")
	f.String("output-dir", def.General.OutputDir, "directory for the molecule files")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

//flagKeys maps each flag to its configuration key.
var flagKeys = map[string]string{
	"verbosity":          "general.verbosity",
	"parallel":           "general.parallel",
	"num-molecules":      "general.num_molecules",
	"max-cycles":         "general.max_cycles",
	"print-config":       "general.print_config",
	"postprocess":        "general.postprocess",
	"seed":               "general.seed",
	"output-dir":         "general.output_dir",
	"engine":             "refine.engine",
	"postprocess-engine": "postprocess.engine",
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

//newLogger returns a console logger on w, with a level following the
//verbosity: warnings at 0, info at 1, debug at 2 and everything above.
func newLogger(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 3:
		level = zerolog.TraceLevel
	case verbosity == 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

func run(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	used, err := config.Read(v, path)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.General.Verbosity)
	if used != "" {
		log.Info().Str("file", used).Msg("configuration read")
	}
	out := cmd.OutOrStdout()
	if cfg.General.Verbosity > 0 {
		fmt.Fprintln(out, generator.Header(version))
	}
	if cfg.General.PrintConfig {
		fmt.Fprint(out, cfg)
		return nil
	}
	refine, post, err := generator.Setup(cfg, qm.WithLogger(log))
	if err != nil {
		return err
	}
	if cfg.General.Verbosity > 0 {
		fmt.Fprint(out, cfg)
	}
	G, err := generator.New(cfg, refine, post, generator.WithLogger(log), generator.WithOutput(out))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	mols, err := G.Run(ctx)
	if err != nil {
		return err
	}
	if !cfg.General.WriteXYZ {
		return nil
	}
	return writeResults(cfg.General.OutputDir, mols, log)
}

//writeResults writes each molecule to <name>.xyz in dir, with
//<name>.CHRG and <name>.UHF when those are not zero.
func writeResults(dir string, mols []*mindless.Molecule, log zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, mol := range mols {
		name := filepath.Join(dir, mol.Name+".xyz")
		if err := mindless.XYZFileWrite(name, mol); err != nil {
			return fmt.Errorf("writing %s: %w", mol.Name, err)
		}
		if err := mindless.ChargeFilesWrite(dir, mol.Name, mol, true); err != nil {
			return fmt.Errorf("writing %s: %w", mol.Name, err)
		}
		log.Info().Str("file", name).Msg("molecule written")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
