package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/vhsnode/internal/preset"
	"github.com/spf13/cobra"
)

// CreatePresetsCmd creates the presets command.
func CreatePresetsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List capture presets",
		Long:  `Lists the capture presets with their allowed containers and the ffmpeg encoder arguments each one uses.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writePresets(cmd.OutOrStdout(), preset.All(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func writePresets(w io.Writer, templates []preset.Template, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tLABEL\tCONTAINERS\tENCODER ARGS")
	for _, t := range templates {
		containers := make([]string, len(t.Containers))
		for i, c := range t.Containers {
			if c == t.DefaultContainer {
				c += "*"
			}
			containers[i] = c
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Label, strings.Join(containers, ","), strings.Join(t.EncodeArgs, " "))
	}
	return tw.Flush()
}
