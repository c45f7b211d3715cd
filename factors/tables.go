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

package factors

import (
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"
)

// Category is the key of an impact category, e.g. "gwp".
type Category string

// These are the categories that the impact model calculates directly.
// All other categories are derived from these.
const (
	GWP           Category = "gwp"
	Energy        Category = "energy"
	Water         Category = "water"
	Acidification Category = "acidification"
)

// These derived categories are reported in primary-vs-recycled comparisons.
const (
	Eutrophication Category = "eutrophication"
	ODP            Category = "odp"
	PMFormation    Category = "pm_formation"
)

// Modeled returns whether c is calculated directly by the impact model.
func (c Category) Modeled() bool {
	switch c {
	case GWP, Energy, Water, Acidification:
		return true
	}
	return false
}

// CategoryInfo describes an impact category. A category that is not
// calculated by the model is derived from the modeled categories with an
// arithmetic expression, for example "gwp / 2000".
type CategoryInfo struct {
	Key  Category
	Name string
	Unit string

	// Expression is the source of the derivation expression. It is empty
	// for modeled categories.
	Expression string

	expr *govaluate.EvaluableExpression
}

// Derived returns whether the category is calculated from other categories.
func (c CategoryInfo) Derived() bool { return c.expr != nil }

// Variables returns the modeled categories the derivation expression uses.
func (c CategoryInfo) Variables() []Category {
	if c.expr == nil {
		return nil
	}
	var o []Category
	seen := make(map[Category]bool)
	for _, v := range c.expr.Vars() {
		if !seen[Category(v)] {
			seen[Category(v)] = true
			o = append(o, Category(v))
		}
	}
	return o
}

// Derive evaluates the derivation expression using the given values of the
// modeled categories.
func (c CategoryInfo) Derive(values map[Category]float64) (float64, error) {
	if c.expr == nil {
		return 0, fmt.Errorf("factors: category %q is not derived", c.Key)
	}
	v, err := c.expr.Eval(categoryValues(values))
	if err != nil {
		return 0, fmt.Errorf("factors: category %q: %v", c.Key, err)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("factors: category %q: expression %q does not evaluate to a number", c.Key, c.Expression)
	}
	return f, nil
}

// categoryValues supplies category values to derivation expressions.
type categoryValues map[Category]float64

func (v categoryValues) Get(name string) (interface{}, error) {
	x, ok := v[Category(name)]
	if !ok {
		return nil, fmt.Errorf("no value for variable %q", name)
	}
	return x, nil
}

// CircularityDefaults holds the circularity indicators that are not
// calculated from scenario inputs. All values are percentages except
// ReusePotential and ReusePotentialMax, which are scores.
type CircularityDefaults struct {
	RecyclabilityRate       float64 `toml:"recyclability_rate"`
	RecoveryEfficiency      float64 `toml:"recovery_efficiency"`
	ReusePotential          float64 `toml:"reuse_potential"`
	ReusePotentialMax       float64 `toml:"reuse_potential_max"`
	ClosedLoopRecyclingRate float64 `toml:"closed_loop_recycling_rate"`
	MaterialRecoveryRate    float64 `toml:"material_recovery_rate"`
	CircularMaterialUseRate float64 `toml:"circular_material_use_rate"`
	MaterialRecyclingRate   float64 `toml:"material_recycling_rate"`
	EndOfLifeRecyclingRate  float64 `toml:"end_of_life_recycling_rate"`
	ExtendedProductLife     float64 `toml:"extended_product_life"`
	LandfillRate            float64 `toml:"landfill_rate"`
	EnergyRecoveryRate      float64 `toml:"energy_recovery_rate"`
}

// Tables holds a complete, validated set of reference data. Tables are
// read-only after loading and may be shared between goroutines.
type Tables struct {
	// Version identifies the data release.
	Version string

	// GWP holds global warming characterization factors [kg CO2-eq / kg].
	GWP Weights
	// Acidification holds acidification characterization
	// factors [kg SO2-eq / kg].
	Acidification Weights

	// GridEmissionFactors holds emission intensities of electricity
	// generation [kg CO2-eq / kWh]. Sources without a factor emit nothing.
	GridEmissionFactors map[Source]float64
	GridMixes           map[string]*GridMix
	DefaultGridMix      string

	// Transport holds transport emission factors in the order they were
	// listed. The first factor listed for a mode is its fallback.
	Transport []TransportFactor

	Archetypes       map[string]*Archetype
	Materials        map[string]string // material name -> archetype name
	DefaultArchetype string

	// Categories lists the impact categories in reporting order.
	Categories []CategoryInfo

	Circularity CircularityDefaults

	// OreGradeThresholds holds, by material, the lowest ore concentration
	// [%] considered plausible for primary production.
	OreGradeThresholds map[string]float64
}

// ResolveArchetype returns the archetype of the given material. Materials
// that are not in the tables resolve to the default archetype.
func (t *Tables) ResolveArchetype(material string) *Archetype {
	a, _ := t.Resolve(material)
	return a
}

// Resolve returns the archetype of the given material and whether the
// material was found. If it was not, the default archetype is returned.
func (t *Tables) Resolve(material string) (*Archetype, bool) {
	if name, ok := t.Materials[material]; ok {
		return t.Archetypes[name], true
	}
	return t.Archetypes[t.DefaultArchetype], false
}

// MaterialNames returns the names of all materials in the tables, sorted.
func (t *Tables) MaterialNames() []string {
	o := make([]string, 0, len(t.Materials))
	for m := range t.Materials {
		o = append(o, m)
	}
	sort.Strings(o)
	return o
}

// Grid returns the grid mix with the given name and whether it was found.
// Unknown names return the default grid mix.
func (t *Tables) Grid(name string) (*GridMix, bool) {
	if g, ok := t.GridMixes[name]; ok {
		return g, true
	}
	return t.GridMixes[t.DefaultGridMix], false
}

// GridIntensity returns the emission intensity of g [kg CO2-eq / kWh].
func (t *Tables) GridIntensity(g *GridMix) float64 {
	var sum float64
	for s := Source(0); s < numSources; s++ {
		share, ok := g.Shares[s]
		if !ok {
			continue
		}
		sum += t.GridEmissionFactors[s] * share
	}
	return sum
}

// TransportFactor returns the emission factor for k [g CO2-eq / t·km] and
// whether an exact match was found. If there is no exact match, the first
// factor listed for the mode is returned. If the mode has no factors, zero
// is returned.
func (t *Tables) TransportFactor(k TransportKey) (float64, bool) {
	k = k.Normalize()
	first := -1
	for i, f := range t.Transport {
		if f.Key.Mode != k.Mode {
			continue
		}
		if f.Key == k {
			return f.Factor, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return 0, false
	}
	return t.Transport[first].Factor, false
}

// Category returns information about the category with the given key.
func (t *Tables) Category(key Category) (CategoryInfo, bool) {
	for _, c := range t.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryInfo{}, false
}
