package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/vhsnode/internal/devices"
	"github.com/spf13/cobra"
)

// DeviceLister is the device enumeration used by the devices command.
type DeviceLister interface {
	ListVideo() ([]devices.VideoDevice, error)
	ListAudio() ([]devices.AudioDevice, error)
}

type deviceListing struct {
	Video []devices.VideoDevice `json:"video"`
	Audio []devices.AudioDevice `json:"audio"`
}

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		Long:  `Lists V4L2 video devices with their analog inputs and ALSA devices that can capture audio.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDevices(cmd.OutOrStdout(), devices.NewHost(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func writeDevices(w io.Writer, lister DeviceLister, asJSON bool) error {
	video, err := lister.ListVideo()
	if err != nil {
		return fmt.Errorf("failed to list video devices: %w", err)
	}
	audio, err := lister.ListAudio()
	if err != nil {
		return fmt.Errorf("failed to list audio devices: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(deviceListing{Video: video, Audio: audio})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO\tNAME\tDRIVER\tINPUTS")
	for _, d := range video {
		inputs := ""
		for i, in := range d.Inputs {
			if i > 0 {
				inputs += ", "
			}
			inputs += fmt.Sprintf("%d:%s", in.Index, in.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Path, d.Name, d.Driver, inputs)
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintln(tw, "AUDIO\tNAME\tCARD\t")
	for _, d := range audio {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", d.ID, d.Name, d.CardName)
	}
	return tw.Flush()
}
