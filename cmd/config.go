package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rezmoss/prodlog/internal/config"
)

var configForce bool

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the prodlog settings file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		okColor.Fprintf(cmd.OutOrStdout(), "✔ Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long:  `Prints the settings after the file, PRODLOG_* environment variables and flags are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		dimColor.Fprintf(cmd.OutOrStdout(), "# %s\n", configPath())
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change settings and save them",
	Long:  "Known keys: " + strings.Join(config.Keys, ", "),
	Example: `  prodlog config set target=9680000
  prodlog config set driver=sqlite spreadsheet=/srv/ledger.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("invalid setting %q, use key=value", arg)
			}
			if err := cfg.Set(strings.TrimSpace(key), value); err != nil {
				return err
			}
		}
		path := configPath()
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		for _, arg := range args {
			okColor.Fprintf(cmd.OutOrStdout(), "✔ Config updated: %s\n", arg)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
