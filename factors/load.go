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
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/Knetic/govaluate"
)

//go:embed default.toml
var defaultTOML []byte

var (
	defaultTables   *Tables
	loadDefaultOnce sync.Once
)

// Default returns the reference tables shipped with this package. It panics
// if the embedded tables are invalid.
func Default() *Tables {
	loadDefaultOnce.Do(func() {
		t, err := Load(bytes.NewReader(defaultTOML))
		if err != nil {
			panic(fmt.Errorf("factors: embedded tables: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// DefaultTOML returns a copy of the TOML source of the default tables.
func DefaultTOML() []byte {
	return append([]byte(nil), defaultTOML...)
}

// LoadFile loads and validates tables from the TOML file at path.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("factors: opening tables: %w", err)
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

type rawFactorSet struct {
	Emissions      map[string]float64 `toml:"emissions"`
	OreKg          float64            `toml:"ore_kg"`
	EnergyDirectMJ float64            `toml:"energy_direct_MJ"`
	ElectricityKWh float64            `toml:"electricity_kWh"`
	WaterM3        float64            `toml:"water_m3"`
}

type rawArchetype struct {
	Description string       `toml:"description"`
	Primary     rawFactorSet `toml:"primary"`
	Recycled    rawFactorSet `toml:"recycled"`
}

type rawTransport struct {
	Mode   Mode        `toml:"mode"`
	Fuel   Fuel        `toml:"fuel"`
	Power  PowerSource `toml:"power"`
	Factor float64     `toml:"factor"`
}

type rawCategory struct {
	Key  string `toml:"key"`
	Name string `toml:"name"`
	Unit string `toml:"unit"`
	Expr string `toml:"expr"`
}

type rawTables struct {
	Version             string                        `toml:"version"`
	DefaultArchetype    string                        `toml:"default_archetype"`
	DefaultGridMix      string                        `toml:"default_grid_mix"`
	Characterization    map[string]map[string]float64 `toml:"characterization"`
	GridEmissionFactors map[string]float64            `toml:"grid_emission_factors"`
	GridMixes           map[string]map[string]float64 `toml:"grid_mixes"`
	Transport           []rawTransport                `toml:"transport"`
	Archetypes          map[string]rawArchetype       `toml:"archetypes"`
	Materials           map[string]string             `toml:"materials"`
	Categories          []rawCategory                 `toml:"categories"`
	Circularity         CircularityDefaults           `toml:"circularity"`
	OreGradeThresholds  map[string]float64            `toml:"ore_grade_thresholds"`
}

// Load decodes reference tables in TOML format from r and validates them.
// Unknown keys, unknown pollutant, source, or transport names, missing
// values, and inconsistent references are all errors.
func Load(r io.Reader) (*Tables, error) {
	var raw rawTables
	md, err := toml.DecodeReader(r, &raw)
	if err != nil {
		return nil, fmt.Errorf("factors: decoding tables: %w", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("factors: unknown keys in tables: %s", strings.Join(keys, ", "))
	}

	t := &Tables{
		Version:          raw.Version,
		DefaultArchetype: raw.DefaultArchetype,
		DefaultGridMix:   raw.DefaultGridMix,
		Circularity:      raw.Circularity,
	}

	if t.GWP, err = weights("gwp", raw.Characterization); err != nil {
		return nil, err
	}
	if t.Acidification, err = weights("acidification", raw.Characterization); err != nil {
		return nil, err
	}
	for name := range raw.Characterization {
		if name != "gwp" && name != "acidification" {
			return nil, fmt.Errorf("factors: unknown characterization table %q", name)
		}
	}

	if t.GridEmissionFactors, err = sourceMap("grid_emission_factors", raw.GridEmissionFactors); err != nil {
		return nil, err
	}
	t.GridMixes = make(map[string]*GridMix, len(raw.GridMixes))
	for name, shares := range raw.GridMixes {
		s, err := sourceMap(fmt.Sprintf("grid mix %q", name), shares)
		if err != nil {
			return nil, err
		}
		t.GridMixes[name] = &GridMix{Name: name, Shares: s}
	}
	if _, ok := t.GridMixes[t.DefaultGridMix]; !ok {
		return nil, fmt.Errorf("factors: default grid mix %q is not defined", t.DefaultGridMix)
	}

	if t.Transport, err = transport(raw.Transport); err != nil {
		return nil, err
	}

	t.Archetypes = make(map[string]*Archetype, len(raw.Archetypes))
	for name, ra := range raw.Archetypes {
		a, err := archetype(md, name, ra)
		if err != nil {
			return nil, err
		}
		t.Archetypes[name] = a
	}
	if _, ok := t.Archetypes[t.DefaultArchetype]; !ok {
		return nil, fmt.Errorf("factors: default archetype %q is not defined", t.DefaultArchetype)
	}
	t.Materials = make(map[string]string, len(raw.Materials))
	for m, a := range raw.Materials {
		if _, ok := t.Archetypes[a]; !ok {
			return nil, fmt.Errorf("factors: material %q maps to undefined archetype %q", m, a)
		}
		t.Materials[m] = a
	}

	if t.Categories, err = categories(raw.Categories); err != nil {
		return nil, err
	}

	if err := checkCircularity(md, t.Circularity); err != nil {
		return nil, err
	}

	t.OreGradeThresholds = make(map[string]float64, len(raw.OreGradeThresholds))
	for m, v := range raw.OreGradeThresholds {
		if _, ok := t.Materials[m]; !ok {
			return nil, fmt.Errorf("factors: ore grade threshold for unknown material %q", m)
		}
		if err := checkValue(fmt.Sprintf("ore grade threshold for %q", m), v); err != nil {
			return nil, err
		}
		if v > 100 {
			return nil, fmt.Errorf("factors: ore grade threshold for %q is %g%%, which is more than 100%%", m, v)
		}
		t.OreGradeThresholds[m] = v
	}
	return t, nil
}

// checkValue returns an error if v is negative, NaN, or infinite.
func checkValue(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("factors: %s must be a finite, non-negative number but is %g", what, v)
	}
	return nil
}

func weights(name string, tables map[string]map[string]float64) (Weights, error) {
	var w Weights
	tbl, ok := tables[name]
	if !ok {
		return w, fmt.Errorf("factors: missing characterization table %q", name)
	}
	for k, v := range tbl {
		p, err := ParsePollutant(k)
		if err != nil {
			return w, fmt.Errorf("factors: characterization table %q: %w", name, err)
		}
		if err := checkValue(fmt.Sprintf("%s factor for %s", name, k), v); err != nil {
			return w, err
		}
		w[p] = v
	}
	return w, nil
}

func sourceMap(what string, m map[string]float64) (map[Source]float64, error) {
	o := make(map[Source]float64, len(m))
	for k, v := range m {
		s, err := ParseSource(k)
		if err != nil {
			return nil, fmt.Errorf("factors: %s: %w", what, err)
		}
		if err := checkValue(fmt.Sprintf("%s value for %s", what, k), v); err != nil {
			return nil, err
		}
		o[s] = v
	}
	return o, nil
}

func transport(raw []rawTransport) ([]TransportFactor, error) {
	o := make([]TransportFactor, 0, len(raw))
	seen := make(map[TransportKey]bool)
	for i, r := range raw {
		k := TransportKey{Mode: r.Mode, Fuel: r.Fuel, Power: r.Power}
		if !k.Mode.Valid() || !k.Fuel.Valid() {
			return nil, fmt.Errorf("factors: transport entry %d: mode and fuel are required", i+1)
		}
		if k.Fuel == Electric && k.Power == NoPower {
			return nil, fmt.Errorf("factors: transport entry %d (%s): electric factors need a power source", i+1, k)
		}
		if k.Fuel != Electric && k.Power != NoPower {
			return nil, fmt.Errorf("factors: transport entry %d (%s): power source %q given for non-electric fuel", i+1, k, k.Power)
		}
		if seen[k] {
			return nil, fmt.Errorf("factors: transport entry %d: duplicate factor for %s", i+1, k)
		}
		seen[k] = true
		if err := checkValue(fmt.Sprintf("transport factor for %s", k), r.Factor); err != nil {
			return nil, err
		}
		o = append(o, TransportFactor{Key: k, Factor: r.Factor})
	}
	return o, nil
}

func archetype(md toml.MetaData, name string, ra rawArchetype) (*Archetype, error) {
	a := &Archetype{Name: name, Description: ra.Description}
	var err error
	if a.Primary, err = factorSet(md, name, "primary", ra.Primary); err != nil {
		return nil, err
	}
	if a.Recycled, err = factorSet(md, name, "recycled", ra.Recycled); err != nil {
		return nil, err
	}
	if !(a.Recycled.EnergyDirectMJ < a.Primary.EnergyDirectMJ) {
		return nil, fmt.Errorf("factors: archetype %q: recycled direct energy (%g MJ) must be lower than primary (%g MJ)",
			name, a.Recycled.EnergyDirectMJ, a.Primary.EnergyDirectMJ)
	}
	if !(a.Recycled.OreKg < a.Primary.OreKg) {
		return nil, fmt.Errorf("factors: archetype %q: recycled ore use (%g kg) must be lower than primary (%g kg)",
			name, a.Recycled.OreKg, a.Primary.OreKg)
	}
	return a, nil
}

func factorSet(md toml.MetaData, archetype, route string, r rawFactorSet) (FactorSet, error) {
	var fs FactorSet
	for _, key := range []string{"ore_kg", "energy_direct_MJ", "electricity_kWh", "water_m3"} {
		if !md.IsDefined("archetypes", archetype, route, key) {
			return fs, fmt.Errorf("factors: archetype %q %s route: missing %s", archetype, route, key)
		}
	}
	defined := make(map[Pollutant]bool)
	for k, v := range r.Emissions {
		p, err := ParsePollutant(k)
		if err != nil {
			return fs, fmt.Errorf("factors: archetype %q %s route: %w", archetype, route, err)
		}
		fs.Emissions[p] = v
		defined[p] = true
	}
	for _, p := range Pollutants() {
		if !defined[p] {
			return fs, fmt.Errorf("factors: archetype %q %s route: missing %s emissions", archetype, route, p)
		}
	}
	fs.OreKg = r.OreKg
	fs.EnergyDirectMJ = r.EnergyDirectMJ
	fs.ElectricityKWh = r.ElectricityKWh
	fs.WaterM3 = r.WaterM3

	var err error
	fs.Map(func(v float64) float64 {
		if err == nil {
			err = checkValue(fmt.Sprintf("archetype %q %s route value", archetype, route), v)
		}
		return v
	})
	return fs, err
}

func categories(raw []rawCategory) ([]CategoryInfo, error) {
	o := make([]CategoryInfo, 0, len(raw))
	seen := make(map[Category]bool)
	for i, r := range raw {
		c := CategoryInfo{
			Key:        Category(r.Key),
			Name:       r.Name,
			Unit:       r.Unit,
			Expression: strings.TrimSpace(r.Expr),
		}
		if c.Key == "" || c.Name == "" {
			return nil, fmt.Errorf("factors: category entry %d: key and name are required", i+1)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("factors: duplicate category %q", c.Key)
		}
		seen[c.Key] = true
		switch {
		case c.Key.Modeled() && c.Expression != "":
			return nil, fmt.Errorf("factors: category %q is calculated by the model and cannot have an expression", c.Key)
		case !c.Key.Modeled() && c.Expression == "":
			return nil, fmt.Errorf("factors: category %q is not calculated by the model and needs an expression", c.Key)
		case c.Expression != "":
			if err := c.compile(); err != nil {
				return nil, err
			}
		}
		o = append(o, c)
	}
	var missing []string
	for _, k := range []Category{GWP, Energy, Water, Acidification} {
		if !seen[k] {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("factors: missing categories: %s", strings.Join(missing, ", "))
	}
	return o, nil
}

func checkCircularity(md toml.MetaData, c CircularityDefaults) error {
	if !md.IsDefined("circularity") {
		return fmt.Errorf("factors: missing circularity defaults")
	}
	vals := []float64{c.RecyclabilityRate, c.RecoveryEfficiency, c.ReusePotential,
		c.ReusePotentialMax, c.ClosedLoopRecyclingRate, c.MaterialRecoveryRate,
		c.CircularMaterialUseRate, c.MaterialRecyclingRate, c.EndOfLifeRecyclingRate,
		c.ExtendedProductLife, c.LandfillRate, c.EnergyRecoveryRate}
	for _, v := range vals {
		if err := checkValue("circularity default", v); err != nil {
			return err
		}
	}
	if !(c.ReusePotentialMax > 0) {
		return fmt.Errorf("factors: circularity reuse_potential_max must be positive")
	}
	return nil
}

// compile parses the derivation expression of c and checks that it only
// uses modeled categories and gives a finite, positive value when every
// modeled category is 1.
func (c *CategoryInfo) compile() error {
	expr, err := govaluate.NewEvaluableExpression(c.Expression)
	if err != nil {
		return fmt.Errorf("factors: category %q: parsing expression %q: %v", c.Key, c.Expression, err)
	}
	c.expr = expr
	vars := c.Variables()
	if len(vars) == 0 {
		return fmt.Errorf("factors: category %q: expression %q does not use any modeled category", c.Key, c.Expression)
	}
	for _, v := range vars {
		if !v.Modeled() {
			return fmt.Errorf("factors: category %q: undefined variable name '%s'", c.Key, v)
		}
	}
	unit := make(map[Category]float64, len(vars))
	for _, v := range vars {
		unit[v] = 1
	}
	v, err := c.Derive(unit)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("factors: category %q: expression %q must give a finite, positive value, not %g", c.Key, c.Expression, v)
	}
	return nil
}
