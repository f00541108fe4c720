// Package configcmder provides the config command for managing persistent
// sadhana configuration stored in the .sadhana/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent sadhana configuration.

Configuration is stored as config.toml in the .sadhana/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen,
  event_stream.provider, event_stream.brokers, event_stream.topic,
  enrichment.enabled, enrichment.target, enrichment.model, enrichment.timeout_ms,
  audio.sample_rate, audio.frame_size, audio.vad_threshold,
  scoring.lineage, scoring.golden_profile

Use subcommands to get, set, or list configuration values:
  sadhana config set <key> <value>    Set a configuration value
  sadhana config get <key>            Get a configuration value
  sadhana config list                 List all configuration values

Examples:
  sadhana config set storage.provider sqlite
  sadhana config set scoring.lineage sadhguru
  sadhana config get api.listen
  sadhana config list`

const configShortDesc string = "Manage persistent sadhana configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
