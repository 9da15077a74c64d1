package auction

import (
	"context"
	"sync"

	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"
)

type submitCall struct {
	contractId string
	method     string
	signer     string
	args       []xdr.ScVal
}

// In-memory auction contract
type fakeGateway struct {
	mtx      sync.Mutex
	auctions map[uint64]map[string]any
	calls    int
	submits  []submitCall
	callErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{auctions: make(map[uint64]map[string]any)}
}

// Native value as get_auction returns it
func (self *fakeGateway) setAuction(id uint64, status string, bidCount uint32, winner *string, winningBid *int64) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	value := map[string]any{
		"auction_id":      id,
		"publisher":       "GPUBLISHER",
		"impression_slot": "banner-top",
		"floor_price":     int64(100),
		"reserve_price":   int64(200),
		"start_time":      uint64(1000),
		"end_time":        uint64(4600),
		"status":          []any{status},
		"bid_count":       bidCount,
		"winner":          nil,
		"winning_bid":     nil,
	}
	if winner != nil {
		value["winner"] = *winner
		value["winning_bid"] = *winningBid
	}
	self.auctions[id] = value
}

func (self *fakeGateway) callCount() int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.calls
}

func (self *fakeGateway) submitted() []submitCall {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return append([]submitCall(nil), self.submits...)
}

func (self *fakeGateway) Call(ctx context.Context, contractId, method string, args ...xdr.ScVal) (any, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.calls++

	if self.callErr != nil {
		return nil, self.callErr
	}
	if method != "get_auction" {
		return nil, &soroban.SimulationError{Method: method, Message: "unknown function"}
	}

	value, ok := self.auctions[uint64(args[0].MustU64())]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (self *fakeGateway) Submit(ctx context.Context, contractId, method string, signer soroban.Signer, args ...xdr.ScVal) (*soroban.SubmitResult, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.submits = append(self.submits, submitCall{contractId: contractId, method: method, signer: signer.Address(), args: args})
	return &soroban.SubmitResult{Hash: "abc", Ledger: 77}, nil
}

func (self *fakeGateway) LatestLedger(ctx context.Context) (*soroban.LatestLedger, error) {
	return &soroban.LatestLedger{Sequence: 100}, nil
}

func newTestSigner() *soroban.KeypairSigner {
	signer, err := soroban.NewKeypairSigner(keypair.MustRandom().Seed())
	if err != nil {
		panic(err)
	}
	return signer
}

func ptr[T any](v T) *T {
	return &v
}
