package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/spf13/cobra"
)

// configSetters maps `config set` keys to the field they change.
var configSetters = map[string]func(*config.Config, string) error{
	"backend":    func(c *config.Config, v string) error { c.Backend = v; return nil },
	"data_dir":   func(c *config.Config, v string) error { c.DataDir = v; return nil },
	"calendar":   func(c *config.Config, v string) error { c.Calendar = v; return nil },
	"log_level":  func(c *config.Config, v string) error { c.LogLevel = strings.ToUpper(v); return nil },
	"log_format": func(c *config.Config, v string) error { c.LogFormat = strings.ToLower(v); return nil },
	"save_delay": func(c *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.SaveDelay = config.Duration(d)
		return nil
	},
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(a.cfg)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long:  "Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, ok := configSetters[args[0]]
			if !ok {
				return fmt.Errorf("unknown config key %q (known: %s)", args[0], strings.Join(configKeys(), ", "))
			}

			// Edit the file, not the effective config, so env overrides stay out of it.
			cfg, err := config.LoadSaved()
			if err != nil {
				return err
			}
			if err := set(cfg, args[1]); err != nil {
				return fmt.Errorf("invalid value for %s: %w", args[0], err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
