package cmd

import (
	"github.com/pulsartrack/syncer/src/auction"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror auctions from the event stream and serve bid and serving checks",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := auction.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
}
