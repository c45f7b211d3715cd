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
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
)

const tolerance = 1.e-9

func TestDefault(t *testing.T) {
	tbl := Default()
	if len(tbl.Archetypes) != 8 {
		t.Errorf("archetypes: have %d, want 8", len(tbl.Archetypes))
	}
	if len(tbl.Materials) != 69 {
		t.Errorf("materials: have %d, want 69", len(tbl.Materials))
	}
	if len(tbl.Categories) != 15 {
		t.Errorf("categories: have %d, want 15", len(tbl.Categories))
	}
	if tbl.Categories[0].Key != GWP {
		t.Errorf("first category: have %s, want gwp", tbl.Categories[0].Key)
	}
	if tbl.GWP[CH4] != 36 || tbl.GWP[N2O] != 298 || tbl.GWP[CO2] != 1 {
		t.Errorf("gwp weights: %v", tbl.GWP)
	}
	if tbl.Acidification[NOx] != 0.7 || tbl.Acidification[NH3] != 0 {
		t.Errorf("acidification weights: %v", tbl.Acidification)
	}
	if Default() != tbl {
		t.Error("Default should return the same tables on every call")
	}
}

func TestResolveArchetype(t *testing.T) {
	tbl := Default()
	tests := []struct {
		material, archetype string
		found               bool
	}{
		{"Aluminum (Al)", "LightMetal", true},
		{"Steel", "BaseMetal", true},
		{"Gold (Au)", "PreciousMetal", true},
		{"Neodymium (Nd)", "RareEarthElement", true},
		{"Wind Turbine Blade", "LightMetal", true},
		{"Lithium (Li)", "AlkaliMetal", true},
		{"totally-unknown-material-xyz", "BaseMetal", false},
		{"", "BaseMetal", false},
	}
	for _, test := range tests {
		t.Run(test.material, func(t *testing.T) {
			a, found := tbl.Resolve(test.material)
			if a.Name != test.archetype || found != test.found {
				t.Errorf("have (%s, %v), want (%s, %v)", a.Name, found, test.archetype, test.found)
			}
			if tbl.ResolveArchetype(test.material) != a {
				t.Error("ResolveArchetype and Resolve disagree")
			}
		})
	}
}

func TestArchetypeValues(t *testing.T) {
	a := Default().Archetypes["BaseMetal"]
	want := FactorSet{
		Emissions:      Emissions{1850, 5, 0.1, 3, 2, 0.1, 1, 0.5, 1.e-9},
		OreKg:          1400,
		EnergyDirectMJ: 27000,
		ElectricityKWh: 500,
		WaterM3:        5,
	}
	if !reflect.DeepEqual(a.Primary, want) {
		t.Error(pretty.Diff(a.Primary, want))
	}
	for name, a := range Default().Archetypes {
		if a.Recycled.EnergyDirectMJ >= a.Primary.EnergyDirectMJ {
			t.Errorf("%s: recycled energy %g >= primary %g", name, a.Recycled.EnergyDirectMJ, a.Primary.EnergyDirectMJ)
		}
		if a.Recycled.OreKg >= a.Primary.OreKg {
			t.Errorf("%s: recycled ore %g >= primary %g", name, a.Recycled.OreKg, a.Primary.OreKg)
		}
	}
}

func TestTransportFactor(t *testing.T) {
	tbl := Default()
	tests := []struct {
		key    TransportKey
		factor float64
		exact  bool
	}{
		{TransportKey{Mode: Truck, Fuel: Diesel}, 95, true},
		{TransportKey{Mode: Truck, Fuel: Petrol}, 110, true},
		{TransportKey{Mode: Truck, Fuel: Electric, Power: Solar}, 5, true},
		{TransportKey{Mode: Truck, Fuel: Electric, Power: Grid}, 40, true},
		{TransportKey{Mode: Train, Fuel: Electric, Power: Wind}, 1.5, true},
		{TransportKey{Mode: Train, Fuel: Electric, Power: MixedRenewables}, 2.5, true},
		// Power sources are ignored for non-electric fuels.
		{TransportKey{Mode: Truck, Fuel: Diesel, Power: Solar}, 95, true},
		{TransportKey{Mode: Ship, Fuel: MarineFuel}, 15, true},
		{TransportKey{Mode: Air, Fuel: JetFuel}, 500, true},
		// Fallback to the first factor listed for the mode.
		{TransportKey{Mode: Ship, Fuel: Electric, Power: Grid}, 15, false},
		{TransportKey{Mode: Train, Fuel: Petrol}, 30, false},
		{TransportKey{Mode: Truck, Fuel: Electric}, 95, false},
		{TransportKey{}, 0, false},
	}
	for _, test := range tests {
		t.Run(test.key.String(), func(t *testing.T) {
			f, exact := tbl.TransportFactor(test.key)
			if f != test.factor || exact != test.exact {
				t.Errorf("have (%g, %v), want (%g, %v)", f, exact, test.factor, test.exact)
			}
		})
	}
}

func TestGridIntensity(t *testing.T) {
	tbl := Default()
	tests := []struct {
		name      string
		intensity float64
		found     bool
	}{
		{"Global Average", 0.4714, true},
		{"Coal-dominated", 0.807, true},
		{"Renewable-heavy", 0.199, true},
		{"India - National Average", 0.6839, true},
		{"Atlantis Grid", 0.4714, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, found := tbl.Grid(test.name)
			if found != test.found {
				t.Errorf("found: have %v, want %v", found, test.found)
			}
			have := tbl.GridIntensity(g)
			if !floats.EqualWithinAbsOrRel(have, test.intensity, tolerance, tolerance) {
				t.Errorf("intensity: have %g, want %g", have, test.intensity)
			}
		})
	}
}

func TestDerivedCategories(t *testing.T) {
	tbl := Default()
	tests := []struct {
		key  Category
		vars []Category
		in   map[Category]float64
		out  float64
	}{
		{Eutrophication, []Category{GWP}, map[Category]float64{GWP: 2000}, 1},
		{ODP, []Category{GWP}, map[Category]float64{GWP: 2000}, 0.002},
		{PMFormation, []Category{GWP}, map[Category]float64{GWP: 3000}, 1},
		{"adp_fossil", []Category{Energy}, map[Category]float64{Energy: 1000}, 1100},
		{"land_use", []Category{GWP}, map[Category]float64{GWP: 100}, 10},
		{"ionizing_radiation", []Category{GWP}, map[Category]float64{GWP: 1.e6}, 2},
	}
	for _, test := range tests {
		t.Run(string(test.key), func(t *testing.T) {
			c, ok := tbl.Category(test.key)
			if !ok {
				t.Fatalf("missing category %s", test.key)
			}
			if !c.Derived() {
				t.Fatal("not derived")
			}
			if !reflect.DeepEqual(c.Variables(), test.vars) {
				t.Errorf("variables: have %v, want %v", c.Variables(), test.vars)
			}
			have, err := c.Derive(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if !floats.EqualWithinAbsOrRel(have, test.out, tolerance, tolerance) {
				t.Errorf("have %g, want %g", have, test.out)
			}
		})
	}
}

func TestDeriveErrors(t *testing.T) {
	tbl := Default()
	gwp, _ := tbl.Category(GWP)
	if gwp.Derived() {
		t.Error("gwp should not be derived")
	}
	if _, err := gwp.Derive(map[Category]float64{GWP: 1}); err == nil {
		t.Error("deriving a modeled category should fail")
	}
	eu, _ := tbl.Category(Eutrophication)
	if _, err := eu.Derive(map[Category]float64{Energy: 1}); err == nil || !strings.Contains(err.Error(), `no value for variable "gwp"`) {
		t.Errorf("missing variable: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	src := string(DefaultTOML())
	tests := []struct {
		name     string
		old, new string
		errText  string
	}{
		{
			name:    "unknown pollutant",
			old:     "[characterization.acidification]\nSO2",
			new:     "[characterization.acidification]\nSO3",
			errText: `unknown pollutant "SO3"`,
		},
		{
			name:    "negative grid factor",
			old:     "Coal = 0.95",
			new:     "Coal = -0.95",
			errText: "non-negative",
		},
		{
			name:    "unknown archetype",
			old:     `"Steel" = "BaseMetal"`,
			new:     `"Steel" = "Plastic"`,
			errText: `material "Steel" maps to undefined archetype "Plastic"`,
		},
		{
			name:    "default archetype",
			old:     `default_archetype = "BaseMetal"`,
			new:     `default_archetype = "Nope"`,
			errText: `default archetype "Nope"`,
		},
		{
			name:    "default grid",
			old:     `default_grid_mix = "Global Average"`,
			new:     `default_grid_mix = "Mars"`,
			errText: `default grid mix "Mars"`,
		},
		{
			name:    "unknown mode",
			old:     `mode = "Air"`,
			new:     `mode = "Rocket"`,
			errText: "Rocket",
		},
		{
			name:    "electric without power",
			old:     "power = \"Grid\"\nfactor = 40.0",
			new:     "factor = 40.0",
			errText: "need a power source",
		},
		{
			name:    "duplicate transport",
			old:     "[[transport]]\nmode = \"Air\"",
			new:     "[[transport]]\nmode = \"Truck\"\nfuel = \"Diesel\"\nfactor = 1.0\n\n[[transport]]\nmode = \"Air\"",
			errText: "duplicate factor for Truck/Diesel",
		},
		{
			name:    "recycled energy",
			old:     "energy_direct_MJ = 4000.0",
			new:     "energy_direct_MJ = 40000.0",
			errText: `archetype "BaseMetal": recycled direct energy`,
		},
		{
			name:    "missing emission",
			old:     "CFC11 = 1.0e-9\n",
			new:     "",
			errText: "missing CFC11 emissions",
		},
		{
			name:    "missing resource",
			old:     "ore_kg = 1400.0\n",
			new:     "",
			errText: "missing ore_kg",
		},
		{
			name:    "derived variable",
			old:     `expr = "energy * 1.1"`,
			new:     `expr = "pocp * 1.1"`,
			errText: `category "adp_fossil": undefined variable name 'pocp'`,
		},
		{
			name:    "misspelled variable",
			old:     `expr = "gwp / 2000"`,
			new:     `expr = "gpw / 2000"`,
			errText: `category "eutrophication": undefined variable name 'gpw'`,
		},
		{
			name:    "negative expression",
			old:     `expr = "gwp / 2000"`,
			new:     `expr = "gwp / -2000"`,
			errText: `category "eutrophication": expression "gwp / -2000" must give a finite, positive value`,
		},
		{
			name:    "zero divisor",
			old:     `expr = "gwp / 2000"`,
			new:     `expr = "gwp / 0.0"`,
			errText: `category "eutrophication": expression "gwp / 0.0" must give a finite, positive value, not +Inf`,
		},
		{
			name:    "zero multiplier",
			old:     `expr = "energy * 1.1"`,
			new:     `expr = "energy * 0.0"`,
			errText: `category "adp_fossil": expression "energy * 0.0" must give a finite, positive value, not 0`,
		},
		{
			name:    "constant expression",
			old:     `expr = "gwp / 10"`,
			new:     `expr = "10"`,
			errText: `category "land_use": expression "10" does not use any modeled category`,
		},
		{
			name:    "bad syntax",
			old:     `expr = "gwp / 10"`,
			new:     `expr = "gwp / / 10"`,
			errText: `category "land_use": parsing expression "gwp / / 10"`,
		},
		{
			name:    "boolean expression",
			old:     `expr = "gwp / 10"`,
			new:     `expr = "gwp > 10"`,
			errText: `category "land_use": expression "gwp > 10" does not evaluate to a number`,
		},
		{
			name:    "missing expression",
			old:     "expr = \"gwp / 10\"\n",
			new:     "",
			errText: `category "land_use" is not calculated by the model and needs an expression`,
		},
		{
			name:    "modeled expression",
			old:     "key = \"water\"\n",
			new:     "key = \"water\"\nexpr = \"gwp * 2\"\n",
			errText: `category "water" is calculated by the model and cannot have an expression`,
		},
		{
			name:    "unknown key",
			old:     `version = "2024.1"`,
			new:     "version = \"2024.1\"\nbogus = 1.0",
			errText: "unknown keys in tables: bogus",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if !strings.Contains(src, test.old) {
				t.Fatalf("test input %q not found in default tables", test.old)
			}
			doc := strings.Replace(src, test.old, test.new, 1)
			_, err := Load(strings.NewReader(doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.errText) {
				t.Errorf("error %q does not contain %q", err, test.errText)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "factors")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "tables.toml")
	doc := bytes.Replace(DefaultTOML(), []byte("N2O = 298.0"), []byte("N2O = 265.0"), 1)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.GWP[N2O] != 265 {
		t.Errorf("N2O: have %g, want 265", tbl.GWP[N2O])
	}
	if Default().GWP[N2O] != 298 {
		t.Error("loading a file should not change the default tables")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFactorSetMap(t *testing.T) {
	var fs FactorSet
	var visited int
	out := fs.Map(func(v float64) float64 {
		visited++
		return float64(visited)
	})
	if visited != int(numPollutants)+4 {
		t.Errorf("visited %d values, want %d", visited, int(numPollutants)+4)
	}
	if out.Emissions[CO2] != 1 || out.WaterM3 != float64(visited) {
		t.Errorf("values visited out of order: %+v", out)
	}
	if fs.Emissions[CO2] != 0 {
		t.Error("Map modified its receiver")
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("Ship")); err != nil || m != Ship {
		t.Errorf("have (%v, %v), want Ship", m, err)
	}
	if err := m.UnmarshalText([]byte("")); err == nil {
		t.Error("empty mode should be invalid")
	}
	var f Fuel
	if err := f.UnmarshalText([]byte("Marine Fuel")); err != nil || f != MarineFuel {
		t.Errorf("have (%v, %v), want Marine Fuel", f, err)
	}
	var p PowerSource
	if err := p.UnmarshalText([]byte("Mixed Renewables")); err != nil || p != MixedRenewables {
		t.Errorf("have (%v, %v), want Mixed Renewables", p, err)
	}
	b, _ := MixedRenewables.MarshalText()
	if string(b) != "Mixed Renewables" {
		t.Errorf("have %s", b)
	}
}
