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
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/lcaimpact"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to lcaimpact.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FactorTables",
			usage: `
              FactorTables is the path to a TOML file holding the reference
              data: archetype factors, transport factors, grid mixes, and
              impact categories. If it is left blank, the built-in tables are
              used. The path can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages. Acceptable
              values are 'debug', 'info', 'warning', and 'error'.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Scenario",
			usage: `
              Scenario is the path to the scenario to assess. Files ending in
              '.toml' are read as TOML and all others as JSON. The path can
              include environment variables.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scenarios",
			usage: `
              Scenarios are the paths to the scenarios to assess in batch mode.
              Identical scenarios are only calculated once. The paths can
              include environment variables.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. '-'
              writes to standard output. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "-",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags(), tablesDumpCmd.Flags()},
		},
		{
			name: "OutputFormat",
			usage: `
              OutputFormat is the format of the output file. Acceptable values
              are 'json' and 'xlsx'.`,
			defaultVal: "json",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile, or not at all if the
              OutputFile is standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the seed of the random number generator used for the
              Monte Carlo simulation. The default of 0 seeds it from the clock.
              Results are reproducible for a given Seed and Workers.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of simulation runs calculated in parallel.
              The default of 0 uses one worker per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "IncludeDistributions",
			usage: `
              If IncludeDistributions is true, the value of every Monte Carlo
              run is included in JSON output.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), batchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("LCAIMPACT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(batchCmd)
	Root.AddCommand(materialsCmd)
	Root.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesDumpCmd)
}

// setConfig loads environment variables from a .env file in the working
// directory and reads in the configuration file, if there are any.
func setConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lcaimpact: problem reading .env file: %v", err)
	}
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("lcaimpact: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "lcaimpact",
	Short: "A life cycle impact model for materials.",
	Long: `lcaimpact calculates the life cycle environmental impacts of producing a
material, with uncertainty estimated by Monte Carlo simulation, and compares
fully primary with fully recycled production. Use the subcommands specified
below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'LCAIMPACT_var' where 'var' is the
name of the variable to be set. Environment variables are also read from a
'.env' file in the working directory if one exists.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of lcaimpact.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lcaimpact v%s\n", lcaimpact.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd assesses a single scenario.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assess a scenario.",
	Long: `run calculates the impacts of the scenario in the Scenario file, along
with the same scenario using 0% and 100% secondary material, and writes a
report to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScenarios(cmd, []string{Cfg.GetString("Scenario")}, false)
	},
	DisableAutoGenTag: true,
}

// batchCmd assesses several scenarios.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assess several scenarios.",
	Long: `batch calculates a report for each of the files in Scenarios, in
parallel, and writes them to OutputFile as a list. Files that hold the same
scenario are only calculated once. Every scenario is simulated with the same
Seed, so a scenario gives the same results in batch mode as with 'run'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := append(Cfg.GetStringSlice("Scenarios"), args...)
		if len(files) == 0 {
			return fmt.Errorf("lcaimpact: no scenario files were specified; set the Scenarios configuration variable")
		}
		return runScenarios(cmd, files, true)
	},
	DisableAutoGenTag: true,
}

// materialsCmd lists the known materials.
var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the known materials",
	Long: `materials lists each material in the factor tables with the archetype
whose production factors it uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTables(Cfg.GetString("FactorTables"))
		if err != nil {
			return err
		}
		return listMaterials(cmd.OutOrStdout(), t)
	},
	DisableAutoGenTag: true,
}

// tablesCmd validates the factor tables.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Check the factor tables",
	Long: `tables loads and validates the factor tables in FactorTables, or the
built-in tables if FactorTables is blank, and prints a summary of them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTables(Cfg.GetString("FactorTables"))
		if err != nil {
			return err
		}
		return summarizeTables(cmd.OutOrStdout(), t)
	},
	DisableAutoGenTag: true,
}

// tablesDumpCmd writes out the built-in tables.
var tablesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the built-in factor tables",
	Long: `dump writes the built-in factor tables to OutputFile in TOML format.
The output can be edited and used as FactorTables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpTables(cmd, Cfg.GetString("OutputFile"))
	},
	DisableAutoGenTag: true,
}
