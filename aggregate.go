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
	"github.com/ctessum/unit"
	"github.com/spatialmodel/lcaimpact/factors"
)

var (
	megajoule = unit.New(1.e6, unit.Joule)

	// joulesPerKWh is the energy content of one kilowatt-hour.
	joulesPerKWh = 3.6e6

	// perMeter is the dimension of an emission factor in
	// kg emitted per kg carried per meter.
	perMeter = unit.Dimensions{unit.LengthDim: -1}

	// functionalUnitMass is the mass of freight carried in every
	// transport stage, regardless of the functional unit description.
	functionalUnitMass = unit.New(1000, unit.Kilogram)
)

// gridEnergy returns the energy [MJ] of the given amount of electricity [kWh].
func gridEnergy(kWh float64) float64 {
	e := unit.New(kWh*joulesPerKWh, unit.Joule)
	return unit.Div(e, megajoule).Value()
}

// transportEmissions returns the emissions [kg CO2-eq] of carrying the
// functional unit the given distance [km] with the given emission
// factor [g CO2-eq / t·km].
func transportEmissions(distance, factor float64) float64 {
	e := unit.Mul(
		unit.New(distance*1000, unit.Meter),
		functionalUnitMass,
		// g/(t·km) = 1e-3 kg / (1e3 kg · 1e3 m)
		unit.New(factor*1.e-9, perMeter),
	)
	if err := e.Check(unit.Kilogram); err != nil {
		panic(err)
	}
	return e.Value()
}

// Run holds the impacts calculated in a single Monte Carlo run.
type Run struct {
	DirectGWP      float64   // kg CO2-eq from direct process emissions
	ElectricityGWP float64   // kg CO2-eq from grid electricity
	Transport      []float64 // kg CO2-eq from each transport stage
	EnergyDirect   float64   // MJ
	EnergyGrid     float64   // MJ
	Water          float64   // m³
	Acidification  float64   // kg SO2-eq
}

// GWP returns the total global warming potential of the run [kg CO2-eq].
func (r *Run) GWP() float64 {
	gwp := r.DirectGWP + r.ElectricityGWP
	for _, t := range r.Transport {
		gwp += t
	}
	return gwp
}

// Energy returns the total energy demand of the run [MJ].
func (r *Run) Energy() float64 {
	return r.EnergyDirect + r.EnergyGrid
}

// Value returns the value of the given modeled category and whether the
// category is modeled.
func (r *Run) Value(c factors.Category) (float64, bool) {
	switch c {
	case factors.GWP:
		return r.GWP(), true
	case factors.Energy:
		return r.Energy(), true
	case factors.Water:
		return r.Water, true
	case factors.Acidification:
		return r.Acidification, true
	}
	return 0, false
}

// model holds the parts of a calculation that are the same in every run.
type model struct {
	tables    *factors.Tables
	archetype *factors.Archetype

	content   float64 // secondary material content [%]
	deviation float64 // [%]

	gridIntensity float64   // kg CO2-eq / kWh
	transport     []float64 // kg CO2-eq per stage
}

func newModel(t *factors.Tables, s *Scenario, a *factors.Archetype) *model {
	g, _ := t.Grid(s.GridElectricityMix)
	m := &model{
		tables:        t,
		archetype:     a,
		content:       s.SecondaryMaterialContent,
		deviation:     s.UncertaintyDeviation,
		gridIntensity: t.GridIntensity(g),
		transport:     make([]float64, len(s.TransportationStages)),
	}
	for i, ts := range s.TransportationStages {
		f, _ := t.TransportFactor(ts.key())
		m.transport[i] = transportEmissions(ts.Distance, f)
	}
	return m
}

// Aggregate calculates the impacts of a blended factor set.
func (m *model) Aggregate(fs factors.FactorSet) Run {
	r := Run{
		DirectGWP:      m.tables.GWP.Apply(fs.Emissions),
		ElectricityGWP: fs.ElectricityKWh * m.gridIntensity,
		Transport:      append([]float64(nil), m.transport...),
		EnergyDirect:   fs.EnergyDirectMJ,
		EnergyGrid:     gridEnergy(fs.ElectricityKWh),
		Water:          fs.WaterM3,
		Acidification:  m.tables.Acidification.Apply(fs.Emissions),
	}
	return r
}

// run perturbs both production routes, blends them, and aggregates the
// result.
func (m *model) run(r Sampler) Run {
	p := Perturb(m.archetype.Primary, m.deviation, r)
	rc := Perturb(m.archetype.Recycled, m.deviation, r)
	return m.Aggregate(Blend(p, rc, m.content))
}
