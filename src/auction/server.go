package auction

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/pulsartrack/syncer/src/serving"
	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teivah/onecontext"
)

// Rest API server: monitoring, auction snapshots, bid and serving checks
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor  monitoring.Monitor
	arena    *Arena
	bidder   *Bidder
	rules    *Rules
	recorder *serving.Recorder
}

type auctionResponse struct {
	Auction       any   `json:"auction"`
	MinimumBid    int64 `json:"minimumBid"`
	TimeRemaining int64 `json:"timeRemainingSeconds"`
}

type validateBidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type validateBidResponse struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Minimum int64  `json:"minimum,omitempty"`
}

type validateServingRequest struct {
	CampaignId uint64 `json:"campaignId" binding:"required"`
	Publisher  string `json:"publisher" binding:"required"`
}

type validateServingResponse struct {
	Allowed  bool              `json:"allowed"`
	Decision *serving.Decision `json:"decision,omitempty"`
	Check    string            `json:"check,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:              self.Config.RESTListenAddress,
		Handler:           self.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithArena(arena *Arena) *Server {
	self.arena = arena
	return self
}

func (self *Server) WithBidder(bidder *Bidder) *Server {
	self.bidder = bidder
	return self
}

func (self *Server) WithRules(rules *Rules) *Server {
	self.rules = rules
	return self
}

func (self *Server) WithRecorder(recorder *serving.Recorder) *Server {
	self.recorder = recorder
	return self
}

// Registers all routes. Called on start, exposed for tests.
func (self *Server) Routes() *gin.Engine {
	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.monitor.OnGetHealth)
		v1.GET("state", self.monitor.OnGetState)

		if self.arena != nil {
			v1.GET("auctions/:id", self.onGetAuction)
		}
		if self.bidder != nil {
			v1.POST("auctions/:id/validate-bid", self.onValidateBid)
		}
		if self.recorder != nil {
			v1.POST("serving/validate", self.onValidateServing)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(self.monitor.GetPrometheusCollector())
	self.Router.GET("metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if self.Config.Profiler.Enabled {
		runtime.SetBlockProfileRate(self.Config.Profiler.BlockProfileRate)
		pprof.Register(self.Router)
	}

	return self.Router
}

func (self *Server) run() (err error) {
	self.Routes()

	err = self.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

// Request context that is also cancelled when the server stops
func (self *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return onecontext.Merge(c.Request.Context(), self.Ctx)
}

func parseId(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
		return 0, false
	}
	return id, true
}

func (self *Server) onGetAuction(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}

	auction, ok := self.arena.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrAuctionNotFound.Error()})
		return
	}

	resp := auctionResponse{
		Auction:       auction,
		TimeRemaining: int64(auction.TimeRemaining(time.Now()).Seconds()),
	}
	if self.rules != nil {
		resp.MinimumBid = self.rules.MinimumBid(auction)
	}
	c.JSON(http.StatusOK, resp)
}

func (self *Server) onValidateBid(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}

	var req validateBidRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	_, err = self.bidder.ValidateBid(ctx, id, req.Amount)

	var bidErr *BidError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, validateBidResponse{Valid: true})
	case errors.As(err, &bidErr):
		c.JSON(http.StatusUnprocessableEntity, validateBidResponse{
			Reason:  bidErr.Reason.Error(),
			Minimum: bidErr.Minimum,
		})
	case errors.Is(err, ErrAuctionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		self.Log.WithError(err).WithField("auction_id", id).Warn("Failed to validate bid")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func (self *Server) onValidateServing(c *gin.Context) {
	var req validateServingRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := self.requestContext(c)
	defer cancel()

	decision, err := self.recorder.Validate(ctx, req.CampaignId, req.Publisher)

	var servingErr *serving.ServingError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, validateServingResponse{Allowed: true, Decision: decision})
	case errors.As(err, &servingErr) && errors.Is(err, serving.ErrCheckFailed):
		// Ledger unreachable, serving is refused
		c.JSON(http.StatusServiceUnavailable, validateServingResponse{
			Check:  servingErr.Check,
			Reason: err.Error(),
		})
	case servingErr != nil:
		c.JSON(http.StatusUnprocessableEntity, validateServingResponse{
			Check:  servingErr.Check,
			Reason: servingErr.Reason.Error(),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
