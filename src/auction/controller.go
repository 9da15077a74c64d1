package auction

import (
	"github.com/pulsartrack/syncer/src/serving"
	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/monitoring/monitor_sync"
	"github.com/pulsartrack/syncer/src/utils/publisher"
	"github.com/pulsartrack/syncer/src/utils/soroban"
	"github.com/pulsartrack/syncer/src/utils/stream"
	"github.com/pulsartrack/syncer/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates auction synchronization and serving checks.
// Listens to the event stream, keeps the auction mirror in line with the ledger and serves the REST API.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	monitor := monitor_sync.NewMonitor(config)

	gateway := soroban.NewClient(&config.Soroban).
		WithMonitor(monitor)

	var signer soroban.Signer
	if config.Soroban.SignerSecret != "" {
		signer, err = soroban.NewKeypairSigner(config.Soroban.SignerSecret)
		if err != nil {
			return
		}
	}

	rules, err := NewRules(&config.Auction)
	if err != nil {
		return
	}

	arena := NewArena()

	streamClient := stream.NewClient(&config.EventStream).
		WithMonitor(monitor).
		WithOnGaveUp(func() {
			self.Log.Error("Event stream is down, auctions are only reconciled periodically")
		})

	syncer := NewSyncer(config).
		WithArena(arena).
		WithGateway(gateway).
		WithStream(streamClient).
		WithMonitor(monitor)

	bidder := NewBidder(config).
		WithRules(rules).
		WithArena(arena).
		WithGateway(gateway).
		WithSigner(signer).
		WithMonitor(monitor)

	validator := serving.NewValidator(config).
		WithMonitor(monitor).
		WithGateway(gateway)

	recorder := serving.NewRecorder(config).
		WithValidator(validator).
		WithGateway(gateway).
		WithSigner(signer).
		WithMonitor(monitor)

	server := NewServer(config).
		WithMonitor(monitor).
		WithArena(arena).
		WithRules(rules).
		WithBidder(bidder).
		WithRecorder(recorder)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task)

	if config.Auction.PublishChannel != "" {
		syncer = syncer.WithOutput(config.Auction.PublishQueueSize)

		redisPublisher := publisher.NewRedisPublisher[*AuctionUpdate](config, "auction-publisher").
			WithInputChannel(syncer.Output).
			WithChannelName(config.Auction.PublishChannel).
			WithMonitor(monitor)

		self.Task = self.Task.WithSubtask(redisPublisher.Task)
	}

	if config.Serving.StoreWarnings {
		sink := serving.NewWarningSink(config).
			WithMonitor(monitor)

		recorder.WithWarningChannel(sink.Input)

		self.Task = self.Task.
			WithOnBeforeStart(func() error {
				db, err := model.NewConnection(self.Ctx, self.Config, "syncer")
				if err != nil {
					return err
				}
				sink.WithDB(db)
				return nil
			}).
			WithSubtask(sink.Task)
	}

	self.Task = self.Task.
		WithSubtask(syncer.Task).
		WithSubtaskFunc(func() error {
			// Syncer is subscribed at this point
			err := streamClient.Connect(self.Ctx)
			if err != nil {
				self.Log.WithError(err).Warn("Failed to connect to the event stream, retrying in background")
			}
			return nil
		}).
		WithOnStop(streamClient.Disconnect)

	self.Log.WithField("checks", validator.Enabled()).Info("Serving checks configured")

	return
}
