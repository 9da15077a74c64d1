package soroban

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// JSON-RPC transport to a single Soroban RPC node
type BaseClient struct {
	config *config.Soroban
	log    *logrus.Entry

	client  *resty.Client
	limiter *rate.Limiter
	nextId  atomic.Uint64
}

func newBaseClient(config *config.Soroban) (self *BaseClient) {
	self = new(BaseClient)
	self.log = logger.NewSublogger("soroban-client")
	self.config = config

	if config.LimiterInterval > 0 {
		self.limiter = rate.NewLimiter(rate.Every(config.LimiterInterval), config.LimiterBurstSize)
	}

	self.client = resty.New().
		SetBaseURL(config.Url).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "pulsartrack/syncer").
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0).
		SetTransport(self.createTransport()).
		OnBeforeRequest(self.onRateLimit).
		OnAfterResponse(self.onStatusToError)

	return
}

func (self *BaseClient) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.DialerTimeout,
		KeepAlive: self.config.DialerKeepAlive,
	}

	return &http.Transport{
		ForceAttemptHTTP2: true,

		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		IdleConnTimeout:     self.config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
	}
}

// Converts HTTP status to errors
func (self *BaseClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

// Blocks till the request is possible or ctx gets canceled
func (self *BaseClient) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	if self.limiter == nil {
		return nil
	}

	err = self.limiter.Wait(req.Context())
	if err != nil {
		self.log.WithError(err).Warn("Rate limiting failed")
	}
	return
}

// Performs one JSON-RPC call and unmarshals its result
func (self *BaseClient) request(ctx context.Context, method string, params, result any) (err error) {
	body := rpcRequest{
		JsonRpc: "2.0",
		Id:      self.nextId.Add(1),
		Method:  method,
		Params:  params,
	}

	var rpcResp rpcResponse
	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(body).
		ForceContentType("application/json").
		SetResult(&rpcResp).
		Post("")
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}

	if rpcResp.Error != nil {
		self.log.WithField("method", method).
			WithField("code", rpcResp.Error.Code).
			WithField("message", rpcResp.Error.Message).
			Debug("RPC error")
		return rpcResp.Error
	}

	if len(rpcResp.Result) == 0 {
		return &TransportError{Method: method, Err: fmt.Errorf("empty response: %s", resp.Status())}
	}

	if result == nil {
		return nil
	}

	err = json.Unmarshal(rpcResp.Result, result)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	return nil
}
