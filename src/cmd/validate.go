package cmd

import (
	"github.com/pulsartrack/syncer/src/serving"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <campaign-id> <publisher>",
	Short: "Run the cross-contract serving checks for a campaign and publisher",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		campaignId, err := parseUint("campaign id", args[0])
		if err != nil {
			return
		}

		decision, err := serving.NewValidator(conf).
			WithGateway(newGateway()).
			ValidateServing(applicationCtx, campaignId, args[1])
		if err != nil {
			return
		}

		return printJSON(decision)
	},
}
