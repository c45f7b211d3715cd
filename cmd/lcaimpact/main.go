/*
Copyright © 2026 the lcaimpact authors.
This file is part of lcaimpact.

lcaimpact is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lcaimpact is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lcaimpact.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command lcaimpact is a command-line interface for the lcaimpact life cycle
// impact model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/lcaimpact/lcautil"
)

func main() {
	if err := lcautil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}
