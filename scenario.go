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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spatialmodel/lcaimpact/factors"
)

// ErrInvalidScenario is wrapped by every error returned by Scenario.Validate
// and by the field checks in Scenario.UnmarshalJSON.
var ErrInvalidScenario = errors.New("lcaimpact: invalid scenario")

// Route is a production route.
type Route string

// These are the production routes.
const (
	Primary  Route = "primary"
	Recycled Route = "recycled"
)

// TransportStage is one leg of freight transport of the functional unit.
type TransportStage struct {
	ID       int          `json:"id,omitempty"`
	Name     string       `json:"name"`
	Mode     factors.Mode `json:"mode"`
	FuelType factors.Fuel `json:"fuelType"`
	Distance float64      `json:"distance"` // km

	// PowerSource is only used when FuelType is Electric.
	PowerSource factors.PowerSource `json:"powerSource,omitempty"`
}

func (ts TransportStage) key() factors.TransportKey {
	return factors.TransportKey{Mode: ts.Mode, Fuel: ts.FuelType, Power: ts.PowerSource}.Normalize()
}

// DQA holds data quality pedigree scores, each from 1 (best) to 5 (worst).
// Zero means the score was not given.
type DQA struct {
	Reliability   float64 `json:"reliability,omitempty"`
	Completeness  float64 `json:"completeness,omitempty"`
	Temporal      float64 `json:"temporal,omitempty"`
	Geographical  float64 `json:"geographical,omitempty"`
	Technological float64 `json:"technological,omitempty"`
}

type score struct {
	name  string
	value float64
}

func (d DQA) scores() []score {
	return []score{
		{"reliability", d.Reliability},
		{"completeness", d.Completeness},
		{"temporal", d.Temporal},
		{"geographical", d.Geographical},
		{"technological", d.Technological},
	}
}

// ADQI returns the aggregated data quality indicator: the mean of the
// pedigree scores that were given, or zero if none were.
func (d DQA) ADQI() float64 {
	var sum, n float64
	for _, sc := range d.scores() {
		if sc.value == 0 {
			continue
		}
		sum += sc.value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// Scenario describes one assessment request. Only the material, route,
// content, transport, grid, efficiency, end-of-life, ore, and uncertainty
// fields affect the calculation. The rest are carried through to reports.
type Scenario struct {
	ProjectName string `json:"projectName,omitempty"`
	Material    string `json:"material"`
	Category    string `json:"category,omitempty"`

	ProductionProcess Route `json:"productionProcess"`

	// SecondaryMaterialContent is the recycled share of the
	// material [%, 0-100].
	SecondaryMaterialContent float64 `json:"secondaryMaterialContent"`

	AlloyComplexity      string `json:"alloyComplexity,omitempty"`
	CoatingsAndAdditives string `json:"coatingsAndAdditives,omitempty"`

	TransportationStages []TransportStage `json:"transportationStages"`

	FunctionalUnit string `json:"functionalUnit,omitempty"`
	UsePhase       string `json:"usePhase,omitempty"`

	// EndOfLife describes the end-of-life treatment, e.g. "90% Recycled".
	// Its first integer is taken as the recyclability rate.
	EndOfLife string `json:"endOfLife"`
	Region    string `json:"region,omitempty"`

	// OreConcentration is the metal content of the ore [%]. Nil or zero if
	// unknown.
	OreConcentration *float64 `json:"oreConcentration,omitempty"`
	OreType          string   `json:"oreType,omitempty"`

	GridElectricityMix string `json:"gridElectricityMix"`

	// ProcessEnergyEfficiency [%, 0-100].
	ProcessEnergyEfficiency float64 `json:"processEnergyEfficiency"`

	WaterSourceType                   string  `json:"waterSourceType,omitempty"`
	WasteTreatmentMethod              string  `json:"wasteTreatmentMethod,omitempty"`
	ProductLifetimeExtensionPotential float64 `json:"productLifetimeExtensionPotential,omitempty"` // years

	IntendedApplication    string   `json:"intendedApplication,omitempty"`
	IntendedAudience       string   `json:"intendedAudience,omitempty"`
	IsComparativeAssertion bool     `json:"isComparativeAssertion,omitempty"`
	SystemBoundary         []string `json:"systemBoundary,omitempty"`
	Limitations            string   `json:"limitations,omitempty"`

	DQA

	// ReportedADQI is carried through from the input. Reports use the
	// value recalculated from the DQA scores.
	ReportedADQI float64 `json:"adqi,omitempty"`

	// UncertaintyDeviation is the half-width of the perturbation applied
	// to every factor [%]. For example, 10 means ±10%.
	UncertaintyDeviation float64 `json:"uncertaintyDeviation"`
}

// These fields must be present in decoded scenarios. A missing field would
// otherwise be taken as zero.
var (
	requiredFields      = []string{"material", "productionProcess", "secondaryMaterialContent", "processEnergyEfficiency", "uncertaintyDeviation"}
	requiredStageFields = []string{"mode", "fuelType", "distance"}
)

// UnmarshalJSON decodes a scenario. Unknown fields and missing required
// fields are errors that wrap ErrInvalidScenario.
func (s *Scenario) UnmarshalJSON(b []byte) error {
	type plain Scenario
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode((*plain)(s)); err != nil {
		if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field") {
			return invalid("%s", strings.TrimPrefix(msg, "json: "))
		}
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if f := missing(fields, requiredFields); f != "" {
		return invalid("%s is required", f)
	}
	var stages []map[string]json.RawMessage
	for k, v := range fields {
		if strings.EqualFold(k, "transportationStages") {
			if err := json.Unmarshal(v, &stages); err != nil {
				return err
			}
		}
	}
	for i, st := range stages {
		if f := missing(st, requiredStageFields); f != "" {
			return invalid("transport stage %d: %s is required", i+1, f)
		}
	}
	return nil
}

// missing returns the first of names that has no non-null value in
// fields. Names match case-insensitively, as in encoding/json.
func missing(fields map[string]json.RawMessage, names []string) string {
	for _, name := range names {
		found := false
		for k, v := range fields {
			if strings.EqualFold(k, name) && string(bytes.TrimSpace(v)) != "null" {
				found = true
				break
			}
		}
		if !found {
			return name
		}
	}
	return ""
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}

func percent(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// Validate checks that s can be calculated. Every returned error wraps
// ErrInvalidScenario.
func (s *Scenario) Validate() error {
	if s.Material == "" {
		return invalid("material is required")
	}
	if s.ProductionProcess != Primary && s.ProductionProcess != Recycled {
		return invalid("production process %q must be %q or %q", s.ProductionProcess, Primary, Recycled)
	}
	if !percent(s.SecondaryMaterialContent) {
		return invalid("secondary material content %g%% is outside [0, 100]", s.SecondaryMaterialContent)
	}
	if !percent(s.ProcessEnergyEfficiency) || s.ProcessEnergyEfficiency == 0 {
		return invalid("process energy efficiency %g%% is outside (0, 100]", s.ProcessEnergyEfficiency)
	}
	if !percent(s.UncertaintyDeviation) {
		return invalid("uncertainty deviation %g%% is outside [0, 100]", s.UncertaintyDeviation)
	}
	if s.OreConcentration != nil && !percent(*s.OreConcentration) {
		return invalid("ore concentration %g%% is outside [0, 100]", *s.OreConcentration)
	}
	for i, ts := range s.TransportationStages {
		switch {
		case ts.Name == "":
			return invalid("transportation stage %d has no name", i+1)
		case math.IsNaN(ts.Distance) || math.IsInf(ts.Distance, 0) || ts.Distance < 0:
			return invalid("transportation stage %q: distance %g km must be a finite, non-negative number", ts.Name, ts.Distance)
		case !ts.Mode.Valid():
			return invalid("transportation stage %q: unknown transport mode %v", ts.Name, ts.Mode)
		case !ts.FuelType.Valid():
			return invalid("transportation stage %q: unknown fuel type %v", ts.Name, ts.FuelType)
		case !ts.PowerSource.Valid():
			return invalid("transportation stage %q: unknown power source %v", ts.Name, ts.PowerSource)
		}
	}
	for _, sc := range s.DQA.scores() {
		if sc.value != 0 && (math.IsNaN(sc.value) || sc.value < 1 || sc.value > 5) {
			return invalid("data quality %s score %g is outside [1, 5]", sc.name, sc.value)
		}
	}
	return nil
}

// WithSecondaryContent returns a copy of s with the given secondary material
// content. Slices are shared with s.
func (s Scenario) WithSecondaryContent(content float64) Scenario {
	s.SecondaryMaterialContent = content
	return s
}
