// Package lineagescmder provides the lineages command for inspecting the
// registered lineage golden profiles.
package lineagescmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhvanilabs/sadhana/pkg/bhav"
	"github.com/dhvanilabs/sadhana/pkg/cliui"
)

const lineagesLongDesc string = `List the registered lineage golden profiles.

Shows each lineage's recognized aliases, sub-dimension weights, and pass
thresholds. These drive bhav scoring: a stage attempt passes when the
weighted composite and every sub-dimension clear the lineage thresholds
(shifted by the stage's difficulty offset).

Examples:
  sadhana lineages`

const lineagesShortDesc string = "List lineage golden profiles"

func NewLineagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lineages",
		Short: lineagesShortDesc,
		Long:  lineagesLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLineages()
		},
	}

	return cmd
}

func runLineages() error {
	registry := bhav.DefaultRegistry()

	var b strings.Builder
	b.WriteString("# Lineage Golden Profiles\n\n")
	b.WriteString("| Lineage | Aliases | Weights (D/R/C) | Thresholds (D/R/C/Comp) |\n")
	b.WriteString("|---|---|---|---|\n")

	for _, profile := range registry.Lineages() {
		fmt.Fprintf(&b, "| %s | %s | %.2f / %.2f / %.2f | %.2f / %.2f / %.2f / %.2f |\n",
			profile.ID,
			strings.Join(profile.Aliases, ", "),
			profile.Weights.Discipline,
			profile.Weights.Resonance,
			profile.Weights.Coherence,
			profile.Thresholds.Discipline,
			profile.Thresholds.Resonance,
			profile.Thresholds.Coherence,
			profile.Thresholds.Composite,
		)
	}
	fmt.Fprintf(&b, "\nDefault golden profile: `%s`\n", bhav.DefaultGoldenProfile)

	rendered, err := cliui.RenderMarkdown(b.String())
	if err != nil {
		// Fall back to the raw markdown when the terminal renderer fails.
		fmt.Println(b.String())
		return nil
	}

	fmt.Print(rendered)
	return nil
}
