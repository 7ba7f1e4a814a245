package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/internal/cel"
	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/store"
	"github.com/oakwood-commons/gridkit/pkg/grid"
	"github.com/oakwood-commons/gridkit/pkg/settings"
)

var configOutput string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gridkit version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

// configCmd groups the subcommands for saved column settings and the app config.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and reset saved column settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List storage keys with saved column settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fs, err := openStore()
		if err != nil {
			return err
		}
		keys, err := fs.Keys()
		if err != nil {
			return err
		}
		var names []string
		for _, k := range keys {
			if name, ok := strings.CutPrefix(k, grid.KeyPrefix); ok {
				names = append(names, name)
			}
		}
		return writeLines(cmd.OutOrStdout(), names)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <storage-key>",
	Short: "Print the saved column settings for a storage key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openStore()
		if err != nil {
			return err
		}
		gw := grid.NewGateway(fs, true, grid.WithLogger(ctxLogger(rootCtx)))
		defer gw.Close()
		cfg, err := gw.Stored(rootCtx, args[0])
		if errors.Is(err, grid.ErrNotFound) {
			return fmt.Errorf("no saved column settings for %q", args[0])
		}
		if err != nil {
			return err
		}
		return encodeConfig(cmd, cfg)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset <storage-key>",
	Short: "Forget the saved column settings for a storage key",
	Long: `Removes the saved entry. The next run with this storage key starts from
the default columns and saves them again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openStore()
		if err != nil {
			return err
		}
		if err := fs.Remove(rootCtx, grid.StorageKey(args[0])); err != nil {
			return err
		}
		ctxLogger(rootCtx).V(1).Info("column settings removed", "key", args[0])
		if quiet {
			return nil
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "column settings for %q reset to default\n", args[0])
		return err
	},
}

var configAppCmd = &cobra.Command{
	Use:   "app",
	Short: "Print the merged application config as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := config.Marshal(appCfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns [file]",
	Short: "Print the column definitions for the input as a column file",
	Long: `Infers columns from the rows (or reads --columns) and prints them in the
column file layout, ready to edit and pass back with --columns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := loadRows(cmd, args)
		if errors.Is(err, errShowHelp) && columnsFile != "" {
			rows, err = nil, nil
		}
		if err != nil {
			return err
		}
		ev, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(ev, rows)
		if err != nil {
			return err
		}
		b, err := columns.Marshal(reg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions available to --where and column expressions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		return writeLines(cmd.OutOrStdout(), ev.Functions())
	},
}

func openStore() (*store.FileStore, error) {
	return store.NewFileStore(settings.FromContextOrDefault(rootCtx).StateDir)
}

func encodeConfig(cmd *cobra.Command, cfg grid.Config) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(configOutput) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q: want yaml or json", configOutput)
}

func init() {
	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")
	configCmd.AddCommand(configListCmd, configShowCmd, configResetCmd, configAppCmd)

	columnsCmd.Flags().StringVar(&inputFormat, "input-format", "", "input format: json|ndjson|yaml|toml|csv")
	columnsCmd.Flags().StringVar(&columnsFile, "columns", "", "column definitions file to normalise instead of inferring")
}
