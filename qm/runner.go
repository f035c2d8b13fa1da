/*
 * runner.go, part of mindless.
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

package qm

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

//Runner runs an engine executable. Implementations must be safe for
//concurrent use.
type Runner interface {
	//Run runs exe with args in the directory dir, with the combined
	//output written to out. It returns an error if the program could not
	//be run or exited with a non-zero status.
	Run(dir, exe string, args []string, out io.Writer) error
}

//ExecRunner is the Runner backed by os/exec. A started program is always
//waited for; there is no way to interrupt it.
type ExecRunner struct{}

func (ExecRunner) Run(dir, exe string, args []string, out io.Writer) error {
	cmd := exec.Command(exe, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

//scratch creates a private working directory for one calculation. The
//returned function removes it, unless keep is set.
func scratch(program string, keep bool) (string, func(), error) {
	dir, err := os.MkdirTemp("", "mindless_"+program+"_")
	if err != nil {
		return "", func() {}, newError(ErrCantInput, program, "", err.Error(), false, "scratch")
	}
	if keep {
		return dir, func() {}, nil
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

//runTo runs exe in dir with its output to the file outname in dir, and
//returns the output. Errors handling the output file don't wrap the
//underlying error, so runError never takes them for a missing program.
func runTo(r Runner, dir, exe string, args []string, outname string) (string, error) {
	path := filepath.Join(dir, outname)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %v", outname, err)
	}
	runerr := r.Run(dir, exe, args, f)
	if err := f.Close(); err != nil && runerr == nil {
		runerr = fmt.Errorf("closing %s: %v", outname, err)
	}
	out, err := os.ReadFile(path)
	if err != nil && runerr == nil {
		runerr = fmt.Errorf("reading %s: %v", outname, err)
	}
	return string(out), runerr
}

//runError turns the error of a run into an *Error. It is critical if the
//program could not be started, and wraps ErrNotConverged if it ran and
//failed.
func runError(program, dir string, err error) *Error {
	var exit *exec.ExitError
	if !errors.As(err, &exit) {
		var start *exec.Error
		if errors.As(err, &start) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return newError(ErrEngineNotFound, program, dir, err.Error(), true, "Run")
		}
	}
	return newError(ErrNotConverged, program, dir, err.Error(), false, "Run")
}
