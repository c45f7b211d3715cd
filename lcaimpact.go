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

// Package lcaimpact calculates the life cycle environmental impacts of
// producing a material, with uncertainty estimated by Monte Carlo
// simulation.
//
// A Scenario describes the material, its production route and recycled
// content, how it is transported, and the electricity grid it is produced
// with. The material is resolved to an archetype whose primary and recycled
// production factors are randomly perturbed, blended by the recycled
// content, and aggregated into impact categories SimulationRuns times.
// Each category is then summarized as a mean with a 95% confidence
// interval.
//
// Reference data are held in package factors.
package lcaimpact

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lcaimpact/factors"
)

// Version is the version of the impact model.
const Version = "1.0.0"

// Result holds the impacts and circularity of one scenario.
type Result struct {
	Impacts            map[factors.Category]*ImpactResult `json:"impacts"`
	CircularityDetails CircularityDetails                 `json:"circularityDetails"`
	CircularityScore   float64                            `json:"circularityScore"`
	QualityWarnings    []string                           `json:"qualityWarnings"`

	// Archetype is the name of the archetype the material resolved to.
	Archetype string `json:"archetype"`

	// ADQI is the aggregated data quality indicator of the scenario.
	ADQI float64 `json:"adqi,omitempty"`

	categories []factors.Category
}

// Categories returns the keys of the impacts in reporting order.
func (r *Result) Categories() []factors.Category {
	return r.categories
}

// StripDistributions removes the per-run values from every impact.
func (r *Result) StripDistributions() {
	for _, i := range r.Impacts {
		i.SimulationResults = nil
	}
}

// Calculate validates s and calculates its impacts.
func (e *Engine) Calculate(ctx context.Context, s *Scenario) (*Result, error) {
	e.setDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	a, found := e.Tables.Resolve(s.Material)
	if !found {
		e.Log.WithFields(logrus.Fields{
			"material":  s.Material,
			"archetype": a.Name,
		}).Warn("lcaimpact: unknown material; using default archetype")
	}
	d, err := e.Simulate(ctx, s, a)
	if err != nil {
		return nil, err
	}
	impacts, err := d.Summarize(e.Tables)
	if err != nil {
		return nil, err
	}
	r := &Result{
		Impacts:            impacts,
		CircularityDetails: DeriveCircularity(s, e.Tables.Circularity),
		QualityWarnings:    QualityWarnings(s, e.Tables),
		Archetype:          a.Name,
		ADQI:               s.ADQI(),
		categories:         make([]factors.Category, len(e.Tables.Categories)),
	}
	r.CircularityScore = r.CircularityDetails.Score()
	for i, c := range e.Tables.Categories {
		r.categories[i] = c.Key
	}
	return r, nil
}

// Report holds the results of a scenario as given, and a comparison of the
// same scenario with fully primary and fully recycled material.
type Report struct {
	Result            *Result            `json:"results"`
	PrimaryVsRecycled *PrimaryVsRecycled `json:"primaryVsRecycled"`
}

// Analyze calculates s as given, with 0% secondary material content, and
// with 100% secondary material content, in that order.
func (e *Engine) Analyze(ctx context.Context, s *Scenario) (*Report, error) {
	r, err := e.Calculate(ctx, s)
	if err != nil {
		return nil, err
	}
	ps := s.WithSecondaryContent(0)
	p, err := e.Calculate(ctx, &ps)
	if err != nil {
		return nil, err
	}
	rs := s.WithSecondaryContent(100)
	rc, err := e.Calculate(ctx, &rs)
	if err != nil {
		return nil, err
	}
	return &Report{Result: r, PrimaryVsRecycled: Compare(p, rc)}, nil
}

// StripDistributions removes the per-run values from every result in the
// report.
func (r *Report) StripDistributions() {
	r.Result.StripDistributions()
	r.PrimaryVsRecycled.Primary.StripDistributions()
	r.PrimaryVsRecycled.Recycled.StripDistributions()
}
