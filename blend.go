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

package lcaimpact

import "github.com/spatialmodel/lcaimpact/factors"

// Blend mixes primary and recycled route factors by the secondary material
// content [%]:
//
//	primary*(1 - content/100) + recycled*(content/100)
//
// A content of 0 returns primary and a content of 100 returns recycled,
// both exactly.
func Blend(primary, recycled factors.FactorSet, content float64) factors.FactorSet {
	switch content {
	case 0:
		return primary
	case 100:
		return recycled
	}
	s := content / 100
	p := 1 - s
	return factors.Combine(primary, recycled, func(a, b float64) float64 {
		return a*p + b*s
	})
}
