package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ariel-frischer/quacker/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect quacker configuration",
	Long: `Inspect quacker configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (QUACKER_*)
  2. Project config (.quacker/config.yml, or --config)
  3. User config (~/.config/quacker/config.yml)
  4. Built-in defaults`,
	Example: `  # Show effective configuration
  quacker config show

  # Show where each value came from
  quacker config show --sources

  # List every key
  quacker config keys`,
}

var showSources bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return showConfig(cmd.OutOrStdout(), cfg, showSources)
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys with their allowed values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listKeys(cmd.OutOrStdout())
	},
}

var configTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a commented config file with every default",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultConfigTemplate())
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	configShowCmd.Flags().BoolVar(&showSources, "sources", false, "Annotate each value with its source")
	configCmd.AddCommand(configShowCmd, configKeysCmd, configTemplateCmd)
	rootCmd.AddCommand(configCmd)
}

func showConfig(out io.Writer, cfg *config.Configuration, sources bool) error {
	if !sources {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if src, ok := cfg.Sources[key.Value]; ok {
			node.Content[i+1].LineComment = "# " + string(src)
		}
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func listKeys(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUES\tDEFAULT\tDESCRIPTION")
	for _, key := range config.SortedKeys() {
		schema, err := config.GetKeySchema(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", key, schema.FormatAllowed(), schema.Default, schema.Description)
	}
	return w.Flush()
}
