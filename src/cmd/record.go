package cmd

import (
	"context"
	"fmt"

	"github.com/pulsartrack/syncer/src/serving"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:       "record <view|click> <campaign-id> <publisher>",
	Short:     "Validate serving and record an impression or a click on chain",
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"view", "click"},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		campaignId, err := parseUint("campaign id", args[1])
		if err != nil {
			return
		}

		signer, err := newSigner()
		if err != nil {
			return
		}

		gateway := newGateway()
		recorder := serving.NewRecorder(conf).
			WithValidator(serving.NewValidator(conf).WithGateway(gateway)).
			WithGateway(gateway).
			WithSigner(signer)

		var record func(context.Context, uint64, string) (*serving.Decision, *soroban.SubmitResult, error)
		switch args[0] {
		case "view":
			record = recorder.RecordView
		case "click":
			record = recorder.RecordClick
		default:
			return fmt.Errorf("unknown record kind %q", args[0])
		}

		decision, result, err := record(applicationCtx, campaignId, args[2])
		if err != nil {
			return
		}

		return printJSON(map[string]any{"decision": decision, "hash": result.Hash, "ledger": result.Ledger})
	},
}
