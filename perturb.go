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

// Sampler is a source of uniform random numbers in [0, 1).
// *math/rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// Multiplier draws a random multiplier from a triangular distribution
// centered on 1 with a half-width of deviation percent:
//
//	1 + (U1 + U2 - 1) * deviation/100
//
// The result always lies within [1-deviation/100, 1+deviation/100].
func Multiplier(deviation float64, r Sampler) float64 {
	return 1 + (r.Float64()+r.Float64()-1)*deviation/100
}

// Perturb returns a copy of fs with every value multiplied by an
// independent draw from Multiplier. Values are drawn in the fixed order of
// factors.FactorSet.Map, so a seeded Sampler always produces the same
// result. fs is not modified.
func Perturb(fs factors.FactorSet, deviation float64, r Sampler) factors.FactorSet {
	return fs.Map(func(v float64) float64 {
		return v * Multiplier(deviation, r)
	})
}
