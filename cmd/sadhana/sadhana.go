// Package sadhanacmder
package sadhanacmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/dhvanilabs/sadhana/cmd/sadhana/config"
	lineagescmder "github.com/dhvanilabs/sadhana/cmd/sadhana/lineages"
	servecmder "github.com/dhvanilabs/sadhana/cmd/sadhana/serve"
	versioncmder "github.com/dhvanilabs/sadhana/cmd/version"
)

const sadhanaLongDesc string = `Sadhana is a chant practice companion core.

It scores chant practice against lineage golden profiles, walks the
ordered practice flow, and adapts tempo, key, and guidance to the
practitioner's context.

Run the service using:
  sadhana serve        Run the practice API server

Manage configuration using:
  sadhana config       Get, set, and list persistent configuration`

const sadhanaShortDesc string = "Sadhana - Chant Practice Companion"

func NewSadhanaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sadhana",
		Short: sadhanaShortDesc,
		Long:  sadhanaLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.sadhana or ~/.sadhana)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(lineagescmder.NewLineagesCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
