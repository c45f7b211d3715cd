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
	"sort"

	"github.com/spatialmodel/lcaimpact/factors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// These are the names of the stage and source contributions.
const (
	ProductionStage      = "Production"
	TransportStagePrefix = "Transport: "
	DirectFuelSource     = "Direct Fuel"
	GridSource           = "Grid Electricity"
)

// Contribution is the mean contribution of one stage or energy source to
// an impact category.
type Contribution struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ImpactResult is the summary of one impact category.
type ImpactResult struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"` // mean
	Unit  string  `json:"unit"`

	// ConfidenceInterval holds the 2.5th and 97.5th percentiles.
	ConfidenceInterval [2]float64 `json:"confidenceInterval"`

	// StdDev is the sample standard deviation.
	StdDev float64 `json:"stdDev"`

	Stages  []Contribution `json:"stages"`
	Sources []Contribution `json:"sources,omitempty"`

	// SimulationResults holds the value of every run in run order.
	SimulationResults []float64 `json:"simulationResults,omitempty"`
}

// Summarize calculates the mean, 95% confidence interval, and standard
// deviation of dist. dist is retained, not copied, as the simulation
// results of the returned value and must not be modified afterward.
// An empty dist gives a result with only a name and unit.
func Summarize(name, unit string, dist []float64) *ImpactResult {
	r := &ImpactResult{Name: name, Unit: unit, Stages: []Contribution{}}
	n := len(dist)
	if n == 0 {
		return r
	}
	sorted := make([]float64, n)
	copy(sorted, dist)
	sort.Float64s(sorted)

	r.Value = stat.Mean(dist, nil)
	r.ConfidenceInterval = [2]float64{
		sorted[int(math.Floor(0.025*float64(n)))],
		sorted[int(math.Ceil(0.975*float64(n)))-1],
	}
	if n > 1 {
		r.StdDev = stat.StdDev(dist, nil)
	}
	r.SimulationResults = dist
	return r
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Sum(x) / float64(len(x))
}

// Summarize summarizes every category in the tables' catalogue. Derived
// categories are evaluated run by run from the modeled categories.
func (d *Distributions) Summarize(t *factors.Tables) (map[factors.Category]*ImpactResult, error) {
	o := make(map[factors.Category]*ImpactResult, len(t.Categories))
	for _, c := range t.Categories {
		var dist []float64
		if c.Derived() {
			var err error
			if dist, err = d.derive(c); err != nil {
				return nil, err
			}
		} else {
			dist = d.Values(c.Key)
		}
		o[c.Key] = Summarize(c.Name, c.Unit, dist)
	}

	if gwp, ok := o[factors.GWP]; ok && d.Len() > 0 {
		stages := make([]Contribution, 0, len(d.Transport)+1)
		var transport float64
		for i, name := range d.StageNames {
			v := mean(d.Transport[i])
			transport += v
			stages = append(stages, Contribution{Name: TransportStagePrefix + name, Value: v})
		}
		gwp.Stages = append([]Contribution{{Name: ProductionStage, Value: gwp.Value - transport}}, stages...)
	}
	if energy, ok := o[factors.Energy]; ok && d.Len() > 0 {
		energy.Sources = []Contribution{
			{Name: DirectFuelSource, Value: mean(d.EnergyDirect)},
			{Name: GridSource, Value: mean(d.EnergyGrid)},
		}
	}
	return o, nil
}

// derive evaluates the expression of derived category c for each run.
func (d *Distributions) derive(c factors.CategoryInfo) ([]float64, error) {
	vars := c.Variables()
	dist := make([]float64, d.Len())
	values := make(map[factors.Category]float64, len(vars))
	for i := range dist {
		for _, v := range vars {
			values[v] = d.Values(v)[i]
		}
		var err error
		if dist[i], err = c.Derive(values); err != nil {
			return nil, err
		}
	}
	return dist, nil
}
