package auction

import (
	"sort"
	"sync"

	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/stream"
)

// Auctions keyed by id. Values are only replaced through the merge functions and copied on the way out.
// The lock is for memory safety only, it's never held during ledger calls.
type Arena struct {
	mtx      sync.RWMutex
	auctions map[uint64]*model.Auction
}

func NewArena() *Arena {
	return &Arena{auctions: make(map[uint64]*model.Auction)}
}

func (self *Arena) Get(id uint64) (*model.Auction, bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	auction, ok := self.auctions[id]
	if !ok {
		return nil, false
	}
	return auction.Clone(), true
}

// Ids in ascending order
func (self *Arena) Ids() []uint64 {
	self.mtx.RLock()
	out := make([]uint64, 0, len(self.auctions))
	for id := range self.auctions {
		out = append(out, id)
	}
	self.mtx.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (self *Arena) Len() int {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return len(self.auctions)
}

// Inserts an auction that isn't known yet. Returns false if it was already there.
func (self *Arena) Create(auction *model.Auction) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if _, ok := self.auctions[auction.Id]; ok {
		return false
	}
	self.auctions[auction.Id] = auction.Clone()
	return true
}

// Returns the merged copy if the event changed the auction, nil otherwise. Unknown auctions are left alone.
func (self *Arena) ApplyEvent(id uint64, event *stream.Event) (*model.Auction, bool) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	current, ok := self.auctions[id]
	if !ok {
		return nil, false
	}
	merged, changed := ApplyConfirmedEvent(current, event)
	if !changed {
		return nil, false
	}
	self.auctions[id] = merged
	return merged.Clone(), true
}

// Merges a ledger read, inserting the auction if it's new. Returns the merged copy if anything visible changed.
func (self *Arena) ApplySnapshot(ledger *model.Auction) (*model.Auction, bool) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	merged, changed := ApplySnapshot(self.auctions[ledger.Id], ledger)
	self.auctions[ledger.Id] = merged
	if !changed {
		return nil, false
	}
	return merged.Clone(), true
}
