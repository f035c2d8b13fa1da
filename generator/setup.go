/*
 * setup.go, part of mindless.
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
	"github.com/rmera/mindless/config"
	"github.com/rmera/mindless/qm"
)

//Setup builds the engines named in cfg: the refinement engine and, only
//if general.postprocess is set, the postprocessing one (nil otherwise).
//An engine whose executable can't be found is a fatal error, wrapping
//qm.ErrEngineNotFound.
func Setup(cfg config.Config, opts ...qm.Option) (refine, post qm.Engine, err error) {
	opts = append([]qm.Option{qm.WithKeepFiles(cfg.Postprocess.Debug)}, opts...)
	kind, err := qm.ParseKind(cfg.Refine.Engine)
	if err != nil {
		return nil, nil, err
	}
	if refine, err = qm.New(kind, cfg, opts...); err != nil {
		return nil, nil, err
	}
	if !cfg.General.Postprocess {
		return refine, nil, nil
	}
	if kind, err = qm.ParseKind(cfg.Postprocess.Engine); err != nil {
		return nil, nil, err
	}
	if post, err = qm.New(kind, cfg, opts...); err != nil {
		return nil, nil, err
	}
	return refine, post, nil
}
