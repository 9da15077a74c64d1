package cmd

import (
	"strconv"

	"github.com/pulsartrack/syncer/src/auction"
	"github.com/pulsartrack/syncer/src/utils/model"

	"github.com/spf13/cobra"
)

var (
	bidCampaignId uint64
	bidDryRun     bool
)

func init() {
	bidCmd.Flags().Uint64Var(&bidCampaignId, "campaign", 0, "campaign the bid is made for")
	bidCmd.Flags().BoolVar(&bidDryRun, "dry-run", false, "only validate the bid")
	RootCmd.AddCommand(bidCmd)
}

var bidCmd = &cobra.Command{
	Use:   "bid <auction-id> <amount>",
	Short: "Validate a bid against the current auction state and submit it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseUint("auction id", args[0])
		if err != nil {
			return
		}

		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return
		}

		rules, err := auction.NewRules(&conf.Auction)
		if err != nil {
			return
		}

		bidder := auction.NewBidder(conf).
			WithRules(rules).
			WithArena(auction.NewArena()).
			WithGateway(newGateway())

		if bidDryRun {
			a, err := bidder.ValidateBid(applicationCtx, id, amount)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"valid": true, "auction": a})
		}

		signer, err := newSigner()
		if err != nil {
			return
		}

		bid := &model.Bid{
			AuctionId:  id,
			CampaignId: bidCampaignId,
			Amount:     amount,
		}
		result, err := bidder.WithSigner(signer).PlaceBid(applicationCtx, bid)
		if err != nil {
			return
		}

		return printJSON(map[string]any{"bid": bid, "hash": result.Hash, "ledger": result.Ledger})
	},
}
