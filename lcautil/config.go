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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lcaimpact"
	"github.com/spatialmodel/lcaimpact/factors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// loadTables returns the factor tables at path, or the built-in tables if
// path is blank.
func loadTables(path string) (*factors.Tables, error) {
	path = os.ExpandEnv(path)
	if path == "" {
		return factors.Default(), nil
	}
	t, err := factors.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lcaimpact: loading FactorTables: %v", err)
	}
	return t, nil
}

// ReadScenario reads a scenario from the file at path. Files with a '.toml'
// extension are decoded as TOML, using the same field names as JSON.
// All other files are decoded as JSON.
func ReadScenario(path string) (*lcaimpact.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lcaimpact: reading scenario: %v", err)
	}
	defer f.Close()
	s := new(lcaimpact.Scenario)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		err = decodeTOMLScenario(f, s)
	} else {
		err = json.NewDecoder(f).Decode(s)
	}
	if err != nil {
		return nil, fmt.Errorf("lcaimpact: reading scenario %s: %w", path, err)
	}
	return s, nil
}

// decodeTOMLScenario decodes TOML into a generic map and then converts it
// to JSON so that integer and float values are interchangeable and the
// transport enums are parsed the same way as in JSON files.
func decodeTOMLScenario(r io.Reader, s *lcaimpact.Scenario) error {
	m := make(map[string]interface{})
	if _, err := toml.DecodeReader(r, &m); err != nil {
		return err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, s)
}

// checkOutputFormat ensures that an acceptable output format was specified.
func checkOutputFormat(format string) (string, error) {
	format = strings.ToLower(os.ExpandEnv(format))
	if format != "json" && format != "xlsx" {
		return format, fmt.Errorf("the OutputFormat variable needs to be set to either json or xlsx, "+
			"but is currently set to `%s`", format)
	}
	return format, nil
}

// checkOutputFile expands any environment variables in the output file
// path and makes sure its directory exists.
func checkOutputFile(f string) (string, error) {
	f = os.ExpandEnv(f)
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="report.json")`)
	}
	if f == "-" {
		return f, nil
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("lcaimpact: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified. No log file is written when the output goes to standard output.
func checkLogFile(logFile, outputFile string) string {
	logFile = os.ExpandEnv(logFile)
	if logFile == "" && outputFile != "-" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// newLogger returns a logger writing to w and, if logFile is not blank, to
// logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile, level string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("lcaimpact: invalid LogLevel: %v", err)
	}
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano}
	log.Level = lvl
	log.Out = w
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("lcaimpact: problem creating log file: %v", err)
	}
	log.Out = io.MultiWriter(w, f)
	return log, f.Close, nil
}

// runScenarios reads the scenarios in files, assesses them, and writes the
// reports to the configured output file. If list is true, the reports are
// written as a list even if there is only one.
func runScenarios(cmd *cobra.Command, files []string, list bool) error {
	outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	format, err := checkOutputFormat(Cfg.GetString("OutputFormat"))
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(os.Stderr, checkLogFile(Cfg.GetString("LogFile"), outputFile), Cfg.GetString("LogLevel"))
	if err != nil {
		return err
	}
	defer closeLog()

	t, err := loadTables(Cfg.GetString("FactorTables"))
	if err != nil {
		return err
	}

	scenarios := make([]*lcaimpact.Scenario, len(files))
	for i, f := range files {
		f = os.ExpandEnv(f)
		if f == "" {
			return fmt.Errorf("lcaimpact: you need to specify a scenario file (for example: --Scenario=scenario.json)")
		}
		if scenarios[i], err = ReadScenario(f); err != nil {
			return err
		}
	}

	seed, err := cast.ToInt64E(Cfg.Get("Seed"))
	if err != nil {
		return fmt.Errorf("lcaimpact: reading 'Seed': %v", err)
	}
	workers, err := cast.ToIntE(Cfg.Get("Workers"))
	if err != nil {
		return fmt.Errorf("lcaimpact: reading 'Workers': %v", err)
	}

	start := time.Now()
	b := NewBatch(t, seed, workers, log)
	reports, err := b.Run(context.Background(), scenarios)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"scenarios": len(scenarios),
		"seed":      b.Seed,
		"elapsed":   time.Since(start),
	}).Info("lcaimpact: assessment complete")

	strip := !Cfg.GetBool("IncludeDistributions") || format == "xlsx"
	envelopes := make([]*Envelope, len(reports))
	for i, r := range reports {
		if strip {
			r.StripDistributions()
		}
		envelopes[i] = NewEnvelope(scenarios[i], r)
	}
	if list {
		return writeOutput(cmd, outputFile, format, envelopes, envelopes)
	}
	return writeOutput(cmd, outputFile, format, envelopes[0], envelopes)
}

// listMaterials writes each material and its archetype to w.
func listMaterials(w io.Writer, t *factors.Tables) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "MATERIAL\tARCHETYPE")
	for _, m := range t.MaterialNames() {
		fmt.Fprintf(tw, "%s\t%s\n", m, t.Materials[m])
	}
	return tw.Flush()
}

// summarizeTables writes a description of t to w.
func summarizeTables(w io.Writer, t *factors.Tables) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "version:\t%s\n", t.Version)
	fmt.Fprintf(tw, "materials:\t%d\n", len(t.Materials))
	fmt.Fprintf(tw, "archetypes:\t%d (default %s)\n", len(t.Archetypes), t.DefaultArchetype)
	fmt.Fprintf(tw, "transport factors:\t%d\n", len(t.Transport))
	fmt.Fprintf(tw, "categories:\t%d\n", len(t.Categories))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "GRID MIX\tkg CO₂-eq/kWh")
	names := make([]string, 0, len(t.GridMixes))
	for n := range t.GridMixes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		marker := ""
		if n == t.DefaultGridMix {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%s%s\t%.4g\n", n, marker, t.GridIntensity(t.GridMixes[n]))
	}
	return tw.Flush()
}

// dumpTables writes the built-in factor tables to path.
func dumpTables(cmd *cobra.Command, path string) error {
	path, err := checkOutputFile(path)
	if err != nil {
		return err
	}
	w, closeOut, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(factors.DefaultTOML()); err != nil {
		closeOut()
		return fmt.Errorf("lcaimpact: writing factor tables: %v", err)
	}
	return closeOut()
}
