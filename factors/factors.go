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

// Package factors holds the versioned reference data used by the life cycle
// impact model: material archetype emission and resource intensities,
// transport emission factors, electricity grid mixes, and characterization
// factors. Tables are decoded from TOML and validated once when loaded.
package factors

import "fmt"

// Pollutant is a substance whose emission is tracked in a FactorSet.
type Pollutant int

// These are the pollutants tracked by the model.
const (
	CO2 Pollutant = iota
	CH4
	N2O
	SO2
	NOx
	NH3
	NMVOC
	PM25
	CFC11

	numPollutants
)

var pollutantNames = [numPollutants]string{
	CO2:   "CO2",
	CH4:   "CH4",
	N2O:   "N2O",
	SO2:   "SO2",
	NOx:   "NOx",
	NH3:   "NH3",
	NMVOC: "NMVOC",
	PM25:  "PM2_5",
	CFC11: "CFC11",
}

func (p Pollutant) String() string {
	if p < 0 || p >= numPollutants {
		return fmt.Sprintf("Pollutant(%d)", int(p))
	}
	return pollutantNames[p]
}

// ParsePollutant returns the pollutant with the given name.
func ParsePollutant(s string) (Pollutant, error) {
	for i, n := range pollutantNames {
		if n == s {
			return Pollutant(i), nil
		}
	}
	return 0, fmt.Errorf("factors: unknown pollutant %q", s)
}

// Pollutants returns all tracked pollutants in their canonical order.
func Pollutants() []Pollutant {
	o := make([]Pollutant, numPollutants)
	for i := range o {
		o[i] = Pollutant(i)
	}
	return o
}

// Emissions holds an amount for each pollutant, indexed by Pollutant.
// Units are kg per functional unit.
type Emissions [numPollutants]float64

// Weights holds a characterization weight for each pollutant. Pollutants
// that do not contribute to a category have a weight of zero.
type Weights [numPollutants]float64

// Apply returns the characterized sum of e.
func (w Weights) Apply(e Emissions) float64 {
	var sum float64
	for i, wi := range w {
		if wi == 0 {
			continue
		}
		sum += e[i] * wi
	}
	return sum
}

// FactorSet holds the emission and resource intensities of producing one
// functional unit of a material by one production route.
//
// FactorSet is a value type: assigning it copies every value.
type FactorSet struct {
	Emissions      Emissions
	OreKg          float64 // ore extracted
	EnergyDirectMJ float64 // direct (non-electric) energy
	ElectricityKWh float64
	WaterM3        float64
}

// Map returns a copy of fs with f applied to every numeric value. Values are
// visited in a fixed order: emissions in pollutant order, then ore, direct
// energy, electricity, and water.
func (fs FactorSet) Map(f func(v float64) float64) FactorSet {
	for i, v := range fs.Emissions {
		fs.Emissions[i] = f(v)
	}
	fs.OreKg = f(fs.OreKg)
	fs.EnergyDirectMJ = f(fs.EnergyDirectMJ)
	fs.ElectricityKWh = f(fs.ElectricityKWh)
	fs.WaterM3 = f(fs.WaterM3)
	return fs
}

// Combine returns a FactorSet where each value is f applied to the
// corresponding values of a and b.
func Combine(a, b FactorSet, f func(a, b float64) float64) FactorSet {
	var o FactorSet
	for i := range o.Emissions {
		o.Emissions[i] = f(a.Emissions[i], b.Emissions[i])
	}
	o.OreKg = f(a.OreKg, b.OreKg)
	o.EnergyDirectMJ = f(a.EnergyDirectMJ, b.EnergyDirectMJ)
	o.ElectricityKWh = f(a.ElectricityKWh, b.ElectricityKWh)
	o.WaterM3 = f(a.WaterM3, b.WaterM3)
	return o
}

// Archetype is a group of materials that share a production emissions
// profile.
type Archetype struct {
	Name        string
	Description string
	Primary     FactorSet
	Recycled    FactorSet
}

// Source is a category of electricity generation.
type Source int

// These are the electricity generation sources.
const (
	Coal Source = iota
	Gas
	Hydro
	Renewables
	Nuclear
	Other

	numSources
)

var sourceNames = [numSources]string{"Coal", "Gas", "Hydro", "Renewables", "Nuclear", "Other"}

func (s Source) String() string {
	if s < 0 || s >= numSources {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// ParseSource returns the generation source with the given name.
func ParseSource(s string) (Source, error) {
	for i, n := range sourceNames {
		if n == s {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("factors: unknown electricity source %q", s)
}

// GridMix is the generation mix of an electricity grid. Shares are used
// as weights against per-source emission factors and need not sum to one.
type GridMix struct {
	Name   string
	Shares map[Source]float64
}

// Mode is a freight transport mode.
type Mode int

// These are the transport modes. The zero value is not a valid mode.
const (
	_ Mode = iota
	Truck
	Train
	Ship
	Air

	numModes
)

var modeNames = [numModes]string{"", "Truck", "Train", "Ship", "Air"}

// Valid returns whether m is a known mode.
func (m Mode) Valid() bool { return m > 0 && m < numModes }

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	for i, n := range modeNames {
		if i > 0 && n == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("factors: unknown transport mode %q", b)
}

// Fuel is the energy carrier of a transport stage.
type Fuel int

// These are the transport fuels. The zero value is not a valid fuel.
const (
	_ Fuel = iota
	Diesel
	Petrol
	Electric
	MarineFuel
	JetFuel

	numFuels
)

var fuelNames = [numFuels]string{"", "Diesel", "Petrol", "Electric", "Marine Fuel", "Jet Fuel"}

// Valid returns whether f is a known fuel.
func (f Fuel) Valid() bool { return f > 0 && f < numFuels }

func (f Fuel) String() string {
	if f < 0 || f >= numFuels {
		return fmt.Sprintf("Fuel(%d)", int(f))
	}
	return fuelNames[f]
}

// MarshalText implements encoding.TextMarshaler.
func (f Fuel) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fuel) UnmarshalText(b []byte) error {
	for i, n := range fuelNames {
		if i > 0 && n == string(b) {
			*f = Fuel(i)
			return nil
		}
	}
	return fmt.Errorf("factors: unknown fuel type %q", b)
}

// PowerSource is the origin of the electricity used by an electric
// transport stage. NoPower is used for non-electric stages.
type PowerSource int

// These are the power sources for electric transport.
const (
	NoPower PowerSource = iota
	Grid
	Solar
	Wind
	MixedRenewables

	numPowerSources
)

var powerNames = [numPowerSources]string{"", "Grid", "Solar", "Wind", "Mixed Renewables"}

// Valid returns whether p is a known power source or NoPower.
func (p PowerSource) Valid() bool { return p >= 0 && p < numPowerSources }

func (p PowerSource) String() string {
	if p < 0 || p >= numPowerSources {
		return fmt.Sprintf("PowerSource(%d)", int(p))
	}
	return powerNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p PowerSource) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PowerSource) UnmarshalText(b []byte) error {
	for i, n := range powerNames {
		if n == string(b) {
			*p = PowerSource(i)
			return nil
		}
	}
	return fmt.Errorf("factors: unknown power source %q", b)
}

// TransportKey identifies a transport emission factor. Power is only
// meaningful when Fuel is Electric.
type TransportKey struct {
	Mode  Mode
	Fuel  Fuel
	Power PowerSource
}

// Normalize clears the power source of non-electric keys.
func (k TransportKey) Normalize() TransportKey {
	if k.Fuel != Electric {
		k.Power = NoPower
	}
	return k
}

func (k TransportKey) String() string {
	k = k.Normalize()
	if k.Power != NoPower {
		return fmt.Sprintf("%s/%s/%s", k.Mode, k.Fuel, k.Power)
	}
	return fmt.Sprintf("%s/%s", k.Mode, k.Fuel)
}

// TransportFactor is the emission intensity of a transport key in
// g CO2-eq per tonne-km.
type TransportFactor struct {
	Key    TransportKey
	Factor float64
}
