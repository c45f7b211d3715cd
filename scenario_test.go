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
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/spatialmodel/lcaimpact/factors"
)

func TestValidate(t *testing.T) {
	ore := func(v float64) *float64 { return &v }
	tests := []struct {
		name    string
		modify  func(s *Scenario)
		errText string
	}{
		{"valid", func(s *Scenario) {}, ""},
		{"material", func(s *Scenario) { s.Material = "" }, "material is required"},
		{"process", func(s *Scenario) { s.ProductionProcess = "mined" }, `production process "mined"`},
		{"content high", func(s *Scenario) { s.SecondaryMaterialContent = 101 }, "secondary material content"},
		{"content negative", func(s *Scenario) { s.SecondaryMaterialContent = -1 }, "secondary material content"},
		{"content NaN", func(s *Scenario) { s.SecondaryMaterialContent = math.NaN() }, "secondary material content"},
		{"efficiency zero", func(s *Scenario) { s.ProcessEnergyEfficiency = 0 }, "process energy efficiency"},
		{"efficiency high", func(s *Scenario) { s.ProcessEnergyEfficiency = 150 }, "process energy efficiency"},
		{"deviation negative", func(s *Scenario) { s.UncertaintyDeviation = -5 }, "uncertainty deviation"},
		{"deviation infinite", func(s *Scenario) { s.UncertaintyDeviation = math.Inf(1) }, "uncertainty deviation"},
		{"ore", func(s *Scenario) { s.OreConcentration = ore(120) }, "ore concentration"},
		{"ore ok", func(s *Scenario) { s.OreConcentration = ore(0) }, ""},
		{"stage name", func(s *Scenario) { s.TransportationStages[0].Name = "" }, "stage 1 has no name"},
		{"distance", func(s *Scenario) { s.TransportationStages[0].Distance = -10 }, "distance -10 km"},
		{"mode", func(s *Scenario) { s.TransportationStages[0].Mode = 0 }, "unknown transport mode"},
		{"fuel", func(s *Scenario) { s.TransportationStages[0].FuelType = 99 }, "unknown fuel type"},
		{"power", func(s *Scenario) { s.TransportationStages[0].PowerSource = -1 }, "unknown power source"},
		{"dqa", func(s *Scenario) { s.Temporal = 6 }, "temporal score 6"},
		{"dqa ok", func(s *Scenario) { s.Temporal = 5; s.Reliability = 1 }, ""},
		{"no stages", func(s *Scenario) { s.TransportationStages = nil }, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := scenarioA()
			test.modify(s)
			err := s.Validate()
			if test.errText == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("error %v does not wrap ErrInvalidScenario", err)
			}
			if !strings.Contains(err.Error(), test.errText) {
				t.Errorf("error %q does not contain %q", err, test.errText)
			}
		})
	}
}

func TestADQI(t *testing.T) {
	tests := []struct {
		dqa  DQA
		want float64
	}{
		{DQA{}, 0},
		{DQA{Reliability: 1, Completeness: 2, Temporal: 3, Geographical: 4, Technological: 5}, 3},
		{DQA{Reliability: 2, Temporal: 4}, 3},
	}
	for _, test := range tests {
		if have := test.dqa.ADQI(); have != test.want {
			t.Errorf("%+v: have %g, want %g", test.dqa, have, test.want)
		}
	}
}

func TestScenarioJSON(t *testing.T) {
	const in = `{
  "material": "Aluminum (Al)",
  "productionProcess": "recycled",
  "secondaryMaterialContent": 60,
  "transportationStages": [
    {"id": 1, "name": "Rail", "mode": "Train", "distance": 300, "fuelType": "Electric", "powerSource": "Mixed Renewables"},
    {"id": 2, "name": "Sea", "mode": "Ship", "distance": 4000, "fuelType": "Marine Fuel"}
  ],
  "endOfLife": "95% Recycled",
  "oreConcentration": 30,
  "gridElectricityMix": "EU-27 - Average",
  "processEnergyEfficiency": 85,
  "reliability": 2,
  "uncertaintyDeviation": 15
}`
	var s Scenario
	if err := json.Unmarshal([]byte(in), &s); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(s.TransportationStages) != 2 {
		t.Fatalf("stages: %+v", s.TransportationStages)
	}
	rail := s.TransportationStages[0]
	if rail.Mode != factors.Train || rail.FuelType != factors.Electric || rail.PowerSource != factors.MixedRenewables {
		t.Errorf("rail stage: %+v", rail)
	}
	if s.TransportationStages[1].PowerSource != factors.NoPower {
		t.Errorf("sea stage: %+v", s.TransportationStages[1])
	}
	if s.OreConcentration == nil || *s.OreConcentration != 30 {
		t.Errorf("ore concentration: %v", s.OreConcentration)
	}
	if s.Reliability != 2 || s.ADQI() != 2 {
		t.Errorf("dqa: %+v", s.DQA)
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"fuelType":"Marine Fuel"`) {
		t.Errorf("marshaled scenario: %s", b)
	}

	var again Scenario
	if err := json.Unmarshal(b, &again); err != nil {
		t.Fatalf("decoding marshaled scenario: %v", err)
	}
	if again.TransportationStages[0].ID != 1 || again.SecondaryMaterialContent != 60 {
		t.Errorf("decoded scenario: %+v", again)
	}

	bad := strings.Replace(in, `"Ship"`, `"Canoe"`, 1)
	if err := json.Unmarshal([]byte(bad), &s); err == nil {
		t.Error("expected an error for an unknown mode")
	}
}

func TestScenarioJSONFields(t *testing.T) {
	const in = `{
  "material": "Steel",
  "productionProcess": "primary",
  "secondaryMaterialContent": 10,
  "transportationStages": [
    {"name": "Road", "mode": "Truck", "distance": 120, "fuelType": "Diesel"}
  ],
  "processEnergyEfficiency": 80,
  "adqi": 2.4,
  "uncertaintyDeviation": 10
}`
	tests := []struct {
		name     string
		old, new string
		errText  string
	}{
		{name: "complete"},
		{
			name:    "unknown field",
			old:     `"adqi": 2.4`,
			new:     `"adqi": 2.4, "secondaryContent": 50`,
			errText: `unknown field "secondaryContent"`,
		},
		{
			name:    "unknown stage field",
			old:     `"distance": 120`,
			new:     `"distanceKm": 120`,
			errText: `unknown field "distanceKm"`,
		},
		{
			name:    "missing stage distance",
			old:     `"distance": 120, `,
			new:     "",
			errText: "transport stage 1: distance is required",
		},
		{
			name:    "null stage fuel",
			old:     `"fuelType": "Diesel"`,
			new:     `"fuelType": null`,
			errText: "transport stage 1: fuelType is required",
		},
		{
			name:    "missing content",
			old:     `"secondaryMaterialContent": 10,`,
			new:     "",
			errText: "secondaryMaterialContent is required",
		},
		{
			name:    "missing deviation",
			old:     `,
  "uncertaintyDeviation": 10`,
			new:     "",
			errText: "uncertaintyDeviation is required",
		},
		{
			name:    "missing efficiency",
			old:     `"processEnergyEfficiency": 80,`,
			new:     "",
			errText: "processEnergyEfficiency is required",
		},
		{
			name: "case-insensitive names",
			old:  `"uncertaintyDeviation"`,
			new:  `"UncertaintyDeviation"`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := strings.Replace(in, test.old, test.new, 1)
			var s Scenario
			err := json.Unmarshal([]byte(doc), &s)
			if test.errText == "" {
				if err != nil {
					t.Fatal(err)
				}
				if s.UncertaintyDeviation != 10 || s.ReportedADQI != 2.4 || s.TransportationStages[0].Distance != 120 {
					t.Errorf("decoded scenario: %+v", s)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("error %q does not wrap ErrInvalidScenario", err)
			}
			if !strings.Contains(err.Error(), test.errText) {
				t.Errorf("error %q does not contain %q", err, test.errText)
			}
		})
	}
}
