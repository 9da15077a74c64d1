package cmd

import (
	"time"

	"github.com/pulsartrack/syncer/src/auction"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(auctionCmd)
}

var auctionCmd = &cobra.Command{
	Use:   "auction <auction-id>",
	Short: "Print the ledger state of an auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		id, err := parseUint("auction id", args[0])
		if err != nil {
			return
		}

		rules, err := auction.NewRules(&conf.Auction)
		if err != nil {
			return
		}

		a, err := auction.FetchAuction(applicationCtx, newGateway(), conf.Contracts.Auction, id)
		if err != nil {
			return
		}

		return printJSON(map[string]any{
			"auction":              a,
			"minimumBid":           rules.MinimumBid(a),
			"timeRemainingSeconds": int64(a.TimeRemaining(time.Now()).Seconds()),
		})
	},
}
