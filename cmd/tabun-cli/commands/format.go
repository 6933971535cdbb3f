package commands

import (
	"fmt"
	"os"

	"tabun-api/lib/markup"
	"tabun-api/lib/telemetry"
	"tabun-api/lib/textformat"

	"github.com/spf13/cobra"
)

var (
	formatNoCut  *bool
	formatPlain  *bool
	formatStrike *string
	formatVK     *bool
)

var strikeModes = map[string]textformat.StrikeMode{
	"plain":     textformat.StrikePlain,
	"combining": textformat.StrikeCombining,
	"markup":    textformat.StrikeMarkup,
}

func init() {
	flags := formatCmd.Flags()
	formatNoCut = flags.Bool("no-cut", false, "Stop at the teaser cut.")
	formatPlain = flags.Bool("plain", false, "Keep spoiler titles and the read more label.")
	formatStrike = flags.String("strike", "plain", "How to render struck text: plain, combining or markup.")
	formatVK = flags.Bool("vk", false, "Rewrite vk.com profile links.")
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format <file>",
	Short: "Renders a raw post or comment body file as text.",
	Args:  cobra.ExactArgs(1),
	PersistentPreRun: func(*cobra.Command, []string) {
		telemetry.InitSlog(*debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		strike, ok := strikeModes[*formatStrike]
		if !ok {
			return fmt.Errorf("unknown strike mode %q", *formatStrike)
		}
		tree, err := markup.ToTree(string(raw))
		if err != nil {
			return err
		}

		opts := textformat.Options{
			WithCut: !*formatNoCut,
			Fancy:   !*formatPlain,
			Strike:  strike,
			VKLinks: *formatVK,
		}
		fmt.Println(textformat.Format(tree, opts))
		return nil
	},
}
