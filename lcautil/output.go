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

package lcautil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spatialmodel/lcaimpact"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx"
)

// Envelope is the output record of one assessed scenario.
type Envelope struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Inputs    *lcaimpact.Scenario `json:"inputs"`
	*lcaimpact.Report
}

// NewEnvelope returns a new, uniquely identified envelope holding s and r.
func NewEnvelope(s *lcaimpact.Scenario, r *lcaimpact.Report) *Envelope {
	return &Envelope{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Inputs:    s,
		Report:    r,
	}
}

// label returns a short name for the scenario in e.
func (e *Envelope) label() string {
	if e.Inputs.ProjectName != "" {
		return e.Inputs.ProjectName
	}
	return e.Inputs.Material
}

// createOutput opens path for writing. A path of '-' writes to the
// command's output.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lcaimpact: creating output file: %v", err)
	}
	return f, f.Close, nil
}

// writeOutput writes v as JSON, or envelopes as an Excel workbook, to path.
func writeOutput(cmd *cobra.Command, path, format string, v interface{}, envelopes []*Envelope) error {
	w, closeOut, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		err = WriteJSON(w, v)
	case "xlsx":
		err = WriteXLSX(w, envelopes)
	default:
		err = fmt.Errorf("lcaimpact: invalid output format %q", format)
	}
	if err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("lcaimpact: writing JSON output: %v", err)
	}
	return nil
}

// Sheet names of the Excel output.
const (
	impactsSheet      = "Impacts"
	contributionSheet = "Contributions"
	comparisonSheet   = "Comparison"
	circularitySheet  = "Circularity"
	warningsSheet     = "Warnings"
)

// WriteXLSX writes the envelopes to w as an Excel workbook with one sheet
// each for impacts, stage and source contributions, the primary-vs-recycled
// comparison, circularity indicators, and quality warnings. Each row is
// keyed by the envelope ID.
func WriteXLSX(w io.Writer, envelopes []*Envelope) error {
	f := xlsx.NewFile()
	sheets := make(map[string]*xlsx.Sheet)
	for _, s := range []struct {
		name   string
		header []interface{}
	}{
		{impactsSheet, []interface{}{"ID", "Scenario", "Category", "Name", "Unit", "Mean", "CI Lower", "CI Upper", "Std Dev"}},
		{contributionSheet, []interface{}{"ID", "Scenario", "Category", "Type", "Name", "Value"}},
		{comparisonSheet, []interface{}{"ID", "Scenario", "Category", "Name", "Unit", "Primary", "Recycled", "Savings (%)", "Best Route"}},
		{circularitySheet, []interface{}{"ID", "Scenario", "Archetype", "Circularity Score", "Recyclability Rate",
			"Secondary Content", "Recovery Efficiency", "Reuse Potential", "Landfill Rate", "Energy Recovery Rate", "ADQI"}},
		{warningsSheet, []interface{}{"ID", "Scenario", "Warning"}},
	} {
		sh, err := f.AddSheet(s.name)
		if err != nil {
			return fmt.Errorf("lcaimpact: writing Excel output: %v", err)
		}
		addRow(sh, s.header...)
		sheets[s.name] = sh
	}

	for _, e := range envelopes {
		r := e.Result
		for _, c := range r.Categories() {
			imp, ok := r.Impacts[c]
			if !ok {
				continue
			}
			addRow(sheets[impactsSheet], e.ID, e.label(), string(c), imp.Name, imp.Unit, imp.Value,
				imp.ConfidenceInterval[0], imp.ConfidenceInterval[1], imp.StdDev)
			for _, st := range imp.Stages {
				addRow(sheets[contributionSheet], e.ID, e.label(), string(c), "stage", st.Name, st.Value)
			}
			for _, src := range imp.Sources {
				addRow(sheets[contributionSheet], e.ID, e.label(), string(c), "source", src.Name, src.Value)
			}
		}
		for _, cmp := range e.PrimaryVsRecycled.Comparisons {
			addRow(sheets[comparisonSheet], e.ID, e.label(), string(cmp.Category), cmp.Name, cmp.Unit,
				cmp.Primary, cmp.Recycled, cmp.Savings, e.PrimaryVsRecycled.BestRoute)
		}
		cd := r.CircularityDetails
		addRow(sheets[circularitySheet], e.ID, e.label(), r.Archetype, r.CircularityScore, cd.RecyclabilityRate,
			cd.SecondaryMaterialContent, cd.RecoveryEfficiency, cd.ReusePotential.Value, cd.LandfillRate,
			cd.EnergyRecoveryRate, r.ADQI)
		for _, warning := range r.QualityWarnings {
			addRow(sheets[warningsSheet], e.ID, e.label(), warning)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("lcaimpact: writing Excel output: %v", err)
	}
	return nil
}

// addRow appends a row holding the given string and float64 values to sh.
func addRow(sh *xlsx.Sheet, values ...interface{}) {
	row := sh.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		switch v := v.(type) {
		case string:
			cell.SetString(v)
		case float64:
			cell.SetFloat(v)
		default:
			panic(fmt.Errorf("lcaimpact: invalid cell type %T", v))
		}
	}
}
