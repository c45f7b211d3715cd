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

// ComparedCategories are the categories reported in primary-vs-recycled
// comparisons.
var ComparedCategories = []factors.Category{
	factors.GWP,
	factors.Energy,
	factors.Water,
	factors.Acidification,
	factors.Eutrophication,
	factors.ODP,
}

// ComputeSavings returns the reduction from primary to recycled as a
// percentage of primary. It returns zero when primary is zero.
func ComputeSavings(primary, recycled float64) float64 {
	if primary == 0 {
		return 0
	}
	return (primary - recycled) / primary * 100
}

// Comparison holds the mean impact of fully primary and fully recycled
// production for one category.
type Comparison struct {
	Category factors.Category `json:"category"`
	Name     string           `json:"name"`
	Unit     string           `json:"unit"`
	Primary  float64          `json:"primary"`
	Recycled float64          `json:"recycled"`
	Savings  float64          `json:"savings"` // %
}

// PrimaryVsRecycled compares a scenario calculated with 0% and 100%
// secondary material content.
type PrimaryVsRecycled struct {
	Comparisons []Comparison `json:"comparisons"`

	// BestRoute is the route with the lower global warming potential,
	// either "Primary" or "Recycled".
	BestRoute string `json:"bestRoute"`

	Primary  *Result `json:"primary,omitempty"`
	Recycled *Result `json:"recycled,omitempty"`
}

// Compare builds a comparison from fully primary and fully recycled results.
// Categories missing from either result are skipped.
func Compare(primary, recycled *Result) *PrimaryVsRecycled {
	p := &PrimaryVsRecycled{Primary: primary, Recycled: recycled, BestRoute: "Primary"}
	for _, c := range ComparedCategories {
		pi, ok := primary.Impacts[c]
		if !ok {
			continue
		}
		ri, ok := recycled.Impacts[c]
		if !ok {
			continue
		}
		p.Comparisons = append(p.Comparisons, Comparison{
			Category: c,
			Name:     pi.Name,
			Unit:     pi.Unit,
			Primary:  pi.Value,
			Recycled: ri.Value,
			Savings:  ComputeSavings(pi.Value, ri.Value),
		})
	}
	if c, ok := p.Get(factors.GWP); ok && c.Recycled < c.Primary {
		p.BestRoute = "Recycled"
	}
	return p
}

// Get returns the comparison of the given category.
func (p *PrimaryVsRecycled) Get(c factors.Category) (Comparison, bool) {
	for _, cc := range p.Comparisons {
		if cc.Category == c {
			return cc, true
		}
	}
	return Comparison{}, false
}
