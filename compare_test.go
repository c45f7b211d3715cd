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

import (
	"math"
	"testing"

	"github.com/spatialmodel/lcaimpact/factors"
)

func TestComputeSavings(t *testing.T) {
	tests := []struct {
		primary, recycled, want float64
	}{
		{100, 25, 75},
		{100, 100, 0},
		{100, 150, -50},
		{0, 0, 0},
		{0, 42, 0},
		{0, -3, 0},
	}
	for _, test := range tests {
		have := ComputeSavings(test.primary, test.recycled)
		if math.IsNaN(have) || math.IsInf(have, 0) || have != test.want {
			t.Errorf("ComputeSavings(%g, %g) = %g, want %g", test.primary, test.recycled, have, test.want)
		}
	}
}

func TestCompare(t *testing.T) {
	result := func(gwp, water float64) *Result {
		return &Result{Impacts: map[factors.Category]*ImpactResult{
			factors.GWP:   {Name: "Global Warming Potential", Unit: "kg CO₂-eq", Value: gwp},
			factors.Water: {Name: "Water Consumption", Unit: "m³", Value: water},
		}}
	}
	c := Compare(result(200, 0), result(50, 3))
	if len(c.Comparisons) != 2 {
		t.Fatalf("comparisons: %+v", c.Comparisons)
	}
	gwp, _ := c.Get(factors.GWP)
	if gwp.Savings != 75 || gwp.Primary != 200 || gwp.Recycled != 50 {
		t.Errorf("gwp: %+v", gwp)
	}
	water, _ := c.Get(factors.Water)
	if water.Savings != 0 {
		t.Errorf("water savings with zero primary: %g", water.Savings)
	}
	if c.BestRoute != "Recycled" {
		t.Errorf("best route: %s", c.BestRoute)
	}
	if _, ok := c.Get(factors.ODP); ok {
		t.Error("missing categories should be skipped")
	}

	if c := Compare(result(50, 0), result(200, 0)); c.BestRoute != "Primary" {
		t.Errorf("best route: %s", c.BestRoute)
	}
}
