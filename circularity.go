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
	"fmt"
	"regexp"
	"strconv"

	"github.com/spatialmodel/lcaimpact/factors"
)

// ReusePotential is a reuse potential score and the maximum possible score.
type ReusePotential struct {
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
}

// EndOfLifeFlows holds end-of-life material flow indicators [%].
type EndOfLifeFlows struct {
	CRU float64 `json:"cru"` // circular material use rate
	MFR float64 `json:"mfr"` // material-specific recycling rate
	MER float64 `json:"mer"` // end-of-life recycling rate
}

// CircularityDetails holds circularity indicators. All values are
// percentages except ReusePotential.
type CircularityDetails struct {
	RecyclabilityRate        float64        `json:"recyclabilityRate"`
	SecondaryMaterialContent float64        `json:"secondaryMaterialContent"`
	RecoveryEfficiency       float64        `json:"recoveryEfficiency"`
	ReusePotential           ReusePotential `json:"reusePotential"`
	ClosedLoopRecyclingRate  float64        `json:"closedLoopRecyclingRate"`
	MaterialRecoveryRate     float64        `json:"materialRecoveryRate"`
	EndOfLifeFlows           EndOfLifeFlows `json:"endOfLifeFlows"`
	ExtendedProductLife      float64        `json:"extendedProductLife"`
	LandfillRate             float64        `json:"landfillRate"`
	EnergyRecoveryRate       float64        `json:"energyRecoveryRate"`
}

// ReuseFraction returns the reuse potential as a fraction of its maximum.
func (c CircularityDetails) ReuseFraction() float64 {
	if c.ReusePotential.Max == 0 {
		return 0
	}
	return c.ReusePotential.Value / c.ReusePotential.Max
}

// Score returns the circularity score: the mean of the recyclability rate
// and the secondary material content.
func (c CircularityDetails) Score() float64 {
	return (c.RecyclabilityRate + c.SecondaryMaterialContent) / 2
}

var firstInteger = regexp.MustCompile(`\d+`)

// RecyclabilityRate returns the first integer in an end-of-life
// description, e.g. 90 for "90% Recycled", or fallback if there is none.
func RecyclabilityRate(endOfLife string, fallback float64) float64 {
	m := firstInteger.FindString(endOfLife)
	if m == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return fallback
	}
	return v
}

// DeriveCircularity calculates the circularity indicators of s. Indicators
// that do not depend on the scenario are taken from d.
func DeriveCircularity(s *Scenario, d factors.CircularityDefaults) CircularityDetails {
	return CircularityDetails{
		RecyclabilityRate:        RecyclabilityRate(s.EndOfLife, d.RecyclabilityRate),
		SecondaryMaterialContent: s.SecondaryMaterialContent,
		RecoveryEfficiency:       d.RecoveryEfficiency,
		ReusePotential:           ReusePotential{Value: d.ReusePotential, Max: d.ReusePotentialMax},
		ClosedLoopRecyclingRate:  d.ClosedLoopRecyclingRate,
		MaterialRecoveryRate:     d.MaterialRecoveryRate,
		EndOfLifeFlows: EndOfLifeFlows{
			CRU: d.CircularMaterialUseRate,
			MFR: d.MaterialRecyclingRate,
			MER: d.EndOfLifeRecyclingRate,
		},
		ExtendedProductLife: d.ExtendedProductLife,
		LandfillRate:        d.LandfillRate,
		EnergyRecoveryRate:  d.EnergyRecoveryRate,
	}
}

// minEfficiency is the lowest process energy efficiency [%] considered
// typical.
const minEfficiency = 70

// QualityWarnings returns advisory messages about the data quality of s.
// They never prevent a calculation.
func QualityWarnings(s *Scenario, t *factors.Tables) []string {
	var w []string
	if s.ProcessEnergyEfficiency < minEfficiency {
		w = append(w, fmt.Sprintf("Process efficiency of %g%% is below typical industry "+
			"benchmarks (70-90%%). This may inflate impact results.", s.ProcessEnergyEfficiency))
	}
	if th, ok := t.OreGradeThresholds[s.Material]; ok && s.ProductionProcess == Primary &&
		s.OreConcentration != nil && *s.OreConcentration > 0 && *s.OreConcentration < th {
		w = append(w, fmt.Sprintf("Ore concentration of %g%% for %s is very low (expected at least %g%%). "+
			"Check data, as this significantly increases extraction impacts.", *s.OreConcentration, s.Material, th))
	}
	if a, found := t.Resolve(s.Material); !found {
		w = append(w, fmt.Sprintf("Material %q is not in the reference data; %s factors were used.", s.Material, a.Name))
	}
	if g, found := t.Grid(s.GridElectricityMix); !found {
		if s.GridElectricityMix == "" {
			w = append(w, fmt.Sprintf("No grid electricity mix was given; the %q mix was used.", g.Name))
		} else {
			w = append(w, fmt.Sprintf("Grid electricity mix %q is not recognized; the %q mix was used.", s.GridElectricityMix, g.Name))
		}
	}
	for _, ts := range s.TransportationStages {
		if f, exact := t.TransportFactor(ts.key()); !exact {
			w = append(w, fmt.Sprintf("Transport stage %q: no emission factor for %s; %g g CO₂-eq/t·km was used.",
				ts.Name, ts.key(), f))
		}
	}
	return w
}
