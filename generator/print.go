/*
 * print.go, part of mindless.
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
	"fmt"
	"io"
	"strings"
	"sync"
)

//printer writes the progress of a run. Cycles running in parallel share
//it.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

var banner = []string{
	"",
	`           _           _ _                                `,
	`  _ __ ___ (_)_ __   __| | | ___  ___ ___  __ _  ___ _ __  `,
	` | '_ ` + "`" + ` _ \| | '_ \ / _` + "`" + ` | |/ _ \/ __/ __|/ _` + "`" + ` |/ _ \ '_ \ `,
	` | | | | | | | | | | (_| | |  __/\__ \__ \ (_| |  __/ | | |`,
	` |_| |_| |_|_|_| |_|\__,_|_|\___||___/___/\__, |\___|_| |_|`,
	`                                           |___/           `,
	"",
	"mindlessgen v%s",
	"Random molecule generator",
	"",
}

//Header returns the banner printed at the start of a run.
func Header(version string) string {
	const width = 80
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", width) + "+\n")
	for _, line := range banner {
		if strings.Contains(line, "%s") {
			line = fmt.Sprintf(line, version)
		}
		pad := width - len([]rune(line))
		if pad < 0 {
			pad = 0
		}
		left := pad / 2
		b.WriteString("|" + strings.Repeat(" ", left) + line + strings.Repeat(" ", pad-left) + "|\n")
	}
	b.WriteString("+" + strings.Repeat("-", width) + "+")
	return b.String()
}
