package readmodel

import (
	"sort"
	"sync"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/btree"
	"github.com/huandu/skiplist"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// ============================================================================
// Read model
// ============================================================================
// An in-memory projection of the fund market for the REST API:
// - NAV checkpoints per pool in a B-tree, so "in force at t" is one descent
// - redeem slots per pool in a skip list ordered by slot sequence
// It is seeded from an exported genesis and kept current by keeper
// notifications.
// ============================================================================

const btreeDegree = 16

var _ types.Listener = (*Store)(nil)

// PoolView is the API projection of a pool
type PoolView struct {
	PoolID            string   `json:"pool_id"`
	Currency          string   `json:"currency"`
	ShareLedger       string   `json:"share_ledger"`
	ShareGroupingID   string   `json:"share_grouping_id"`
	FundraisingAmount math.Int `json:"fundraising_amount"`
	Subscriptions     uint64   `json:"subscriptions"`
	AllTimeHighNav    math.Int `json:"all_time_high_nav"`
	CurrentSlotID     string   `json:"current_slot_id,omitempty"`
}

// SlotView is the API projection of a redeem slot
type SlotView struct {
	SlotID        string   `json:"slot_id"`
	PoolID        string   `json:"pool_id"`
	Sequence      uint64   `json:"sequence"`
	Status        string   `json:"status"`
	TotalValue    math.Int `json:"total_value"`
	RedeemNav     math.Int `json:"redeem_nav"`
	CarryAmount   math.Int `json:"carry_amount"`
	EscrowBalance math.Int `json:"escrow_balance"`
}

// navItem orders checkpoints by timestamp
type navItem struct {
	types.NavCheckpoint
}

// Less implements btree.Item
func (a navItem) Less(b btree.Item) bool {
	return a.Timestamp < b.(navItem).Timestamp
}

type poolEntry struct {
	view    *PoolView
	navs    *btree.BTree
	slots   *skiplist.SkipList // sequence -> *SlotView
	lastSeq uint64
}

// Store is safe for concurrent use
type Store struct {
	mu        sync.RWMutex
	pools     map[string]*poolEntry
	slotIndex map[string]*SlotView
}

// NewStore creates an empty read model
func NewStore() *Store {
	return &Store{
		pools:     make(map[string]*poolEntry),
		slotIndex: make(map[string]*SlotView),
	}
}

// Load replaces the store contents with exported module state
func (s *Store) Load(gs types.GenesisState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pools = make(map[string]*poolEntry)
	s.slotIndex = make(map[string]*SlotView)

	for i := range gs.Pools {
		pool := gs.Pools[i]
		entry := s.ensurePool(pool.PoolID)
		entry.view.Currency = pool.Config.Currency
		entry.view.ShareLedger = pool.Config.ShareLedger
		entry.view.ShareGroupingID = pool.ShareGroupingID
		entry.view.FundraisingAmount = pool.FundraisingAmount
		entry.view.CurrentSlotID = pool.CurrentRedeemSlotID
	}

	for _, pc := range gs.Checkpoints {
		entry := s.ensurePool(pc.PoolID)
		for _, cp := range pc.Checkpoints {
			entry.navs.ReplaceOrInsert(navItem{cp})
		}
		if ath, ok := math.NewIntFromString(pc.AllTimeHighNav); ok {
			entry.view.AllTimeHighNav = ath
		}
	}

	for i := range gs.Slots {
		slot := gs.Slots[i]
		entry := s.ensurePool(slot.PoolID)
		view := &SlotView{
			SlotID:        slot.SlotID,
			PoolID:        slot.PoolID,
			Sequence:      slot.Sequence,
			Status:        slot.Status,
			TotalValue:    slot.TotalValue,
			RedeemNav:     slot.RedeemNav,
			CarryAmount:   slot.CarryAmount,
			EscrowBalance: slot.EscrowBalance,
		}
		entry.slots.Set(slot.Sequence, view)
		s.slotIndex[slot.SlotID] = view
		if slot.Sequence > entry.lastSeq {
			entry.lastSeq = slot.Sequence
		}
	}
}

// OnNotification applies a committed keeper notification
func (s *Store) OnNotification(_ sdk.Context, n types.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := n.(type) {
	case types.PoolCreated:
		entry := s.ensurePool(e.PoolID)
		entry.view.Currency = e.Currency
		entry.view.ShareLedger = e.ShareLedger
		entry.view.ShareGroupingID = e.ShareGroupingID

	case types.SubscribeNavSet:
		entry := s.ensurePool(e.PoolID)
		entry.navs.ReplaceOrInsert(navItem{types.NavCheckpoint{Timestamp: e.Timestamp, Nav: e.Nav}})

	case types.Subscribed:
		entry := s.ensurePool(e.PoolID)
		if e.CountsTowardCap {
			entry.view.FundraisingAmount = entry.view.FundraisingAmount.Add(e.Payment)
		}
		entry.view.Subscriptions++

	case types.RedeemRequested:
		slot := s.ensureSlot(e.PoolID, e.SlotID)
		slot.TotalValue = slot.TotalValue.Add(e.Value)
		s.pools[e.PoolID].view.CurrentSlotID = e.SlotID

	case types.RedeemRevoked:
		slot := s.ensureSlot(e.PoolID, e.SlotID)
		slot.TotalValue = slot.TotalValue.Sub(math.MinInt(slot.TotalValue, e.Value))

	case types.RedeemSlotClosed:
		slot := s.ensureSlot(e.PoolID, e.SlotID)
		slot.Status = types.SlotStatusClosed
		s.pools[e.PoolID].view.CurrentSlotID = ""

	case types.CarrySettled:
		s.ensureSlot(e.PoolID, e.SlotID).CarryAmount = e.CarryAmount

	case types.RedeemNavSet:
		slot := s.ensureSlot(e.PoolID, e.SlotID)
		slot.RedeemNav = e.Nav
		slot.Status = types.SlotStatusPriced
		if !e.GrossNav.IsNil() {
			view := s.pools[e.PoolID].view
			view.AllTimeHighNav = types.MaxNav(view.AllTimeHighNav, e.GrossNav)
		}

	case types.Repaid:
		s.ensureSlot(e.PoolID, e.SlotID).EscrowBalance = e.EscrowBalance

	case types.Claimed:
		s.ensureSlot(e.PoolID, e.SlotID).EscrowBalance = e.EscrowBalance
	}
}

// ensurePool returns the pool entry, creating it on first sight. Caller holds mu.
func (s *Store) ensurePool(poolID string) *poolEntry {
	if entry, ok := s.pools[poolID]; ok {
		return entry
	}
	entry := &poolEntry{
		view: &PoolView{
			PoolID:            poolID,
			FundraisingAmount: math.ZeroInt(),
			AllTimeHighNav:    types.InitialNav(),
		},
		navs:  btree.New(btreeDegree),
		slots: skiplist.New(skiplist.Uint64),
	}
	s.pools[poolID] = entry
	return entry
}

// ensureSlot returns the slot view, creating it as the pool's next slot on
// first sight. Slots open one at a time, so first sight follows sequence
// order. Caller holds mu.
func (s *Store) ensureSlot(poolID, slotID string) *SlotView {
	if slot, ok := s.slotIndex[slotID]; ok {
		return slot
	}
	entry := s.ensurePool(poolID)
	entry.lastSeq++
	slot := &SlotView{
		SlotID:        slotID,
		PoolID:        poolID,
		Sequence:      entry.lastSeq,
		Status:        types.SlotStatusOpen,
		TotalValue:    math.ZeroInt(),
		RedeemNav:     math.ZeroInt(),
		CarryAmount:   math.ZeroInt(),
		EscrowBalance: math.ZeroInt(),
	}
	entry.slots.Set(slot.Sequence, slot)
	s.slotIndex[slotID] = slot
	return slot
}

// ============ Queries ============

// Pools returns all pools ordered by id
func (s *Store) Pools() []PoolView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]PoolView, 0, len(s.pools))
	for _, entry := range s.pools {
		pools = append(pools, s.poolView(entry))
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].PoolID < pools[j].PoolID })
	return pools
}

// Pool returns one pool
func (s *Store) Pool(poolID string) (PoolView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pools[poolID]
	if !ok {
		return PoolView{}, false
	}
	return s.poolView(entry), true
}

// poolView copies the view. Caller holds mu.
func (s *Store) poolView(entry *poolEntry) PoolView {
	return *entry.view
}

// NavAt returns the checkpoint in force at ts: the latest one not after ts.
// Before the first checkpoint the earliest one applies.
func (s *Store) NavAt(poolID string, ts int64) (types.NavCheckpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pools[poolID]
	if !ok || entry.navs.Len() == 0 {
		return types.NavCheckpoint{}, false
	}

	var found btree.Item
	entry.navs.DescendLessOrEqual(navItem{types.NavCheckpoint{Timestamp: ts}}, func(item btree.Item) bool {
		found = item
		return false
	})
	if found == nil {
		found = entry.navs.Min()
	}
	return found.(navItem).NavCheckpoint, true
}

// NavHistory returns all checkpoints of a pool in timestamp order
func (s *Store) NavHistory(poolID string) []types.NavCheckpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pools[poolID]
	if !ok {
		return nil
	}
	history := make([]types.NavCheckpoint, 0, entry.navs.Len())
	entry.navs.Ascend(func(item btree.Item) bool {
		history = append(history, item.(navItem).NavCheckpoint)
		return true
	})
	return history
}

// Slots returns a pool's slots in sequence order
func (s *Store) Slots(poolID string) []SlotView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pools[poolID]
	if !ok {
		return nil
	}
	slots := make([]SlotView, 0, entry.slots.Len())
	for elem := entry.slots.Front(); elem != nil; elem = elem.Next() {
		slots = append(slots, *elem.Value.(*SlotView))
	}
	return slots
}

// Slot returns one slot
func (s *Store) Slot(slotID string) (SlotView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slotIndex[slotID]
	if !ok {
		return SlotView{}, false
	}
	return *slot, true
}
