package keeper

import (
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// lockTable hands out one mutex per pool and one per slot. Pool locks guard
// fundraising, slot membership and NAV state; slot locks guard escrow. When
// both are needed the pool lock is taken first. They order operations on the
// same pool or slot; the store itself is single-writer, see Keeper.storeMu.
type lockTable struct {
	mu    sync.Mutex
	pools map[string]*sync.Mutex
	slots map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		pools: make(map[string]*sync.Mutex),
		slots: make(map[string]*sync.Mutex),
	}
}

func (t *lockTable) pool(poolID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.pools[poolID]
	if !ok {
		m = &sync.Mutex{}
		t.pools[poolID] = m
	}
	return m
}

func (t *lockTable) slot(slotID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.slots[slotID]
	if !ok {
		m = &sync.Mutex{}
		t.slots[slotID] = m
	}
	return m
}

// notifier collects the notifications of one operation
type notifier struct {
	ctx     sdk.Context
	pending []types.Notification
}

// emit writes the event into the operation's cached context
func (n *notifier) emit(notification types.Notification) {
	n.ctx.EventManager().EmitEvent(notification.ToEvent())
	n.pending = append(n.pending, notification)
}

// withStore runs fn holding the store lock. Reads outside execute go
// through it, since the underlying multistore is not safe for concurrent use.
func (k *Keeper) withStore(fn func()) {
	k.storeMu.Lock()
	defer k.storeMu.Unlock()
	fn()
}

// execute runs op against a cached copy of ctx. State and events reach ctx
// only when op returns nil; listeners are called after that write, outside
// the store lock. Callers take pool or slot locks before calling execute.
func (k *Keeper) execute(ctx sdk.Context, name string, op func(cacheCtx sdk.Context, n *notifier) error) error {
	start := time.Now()
	var (
		n   *notifier
		err error
	)
	k.withStore(func() {
		cacheCtx, write := ctx.CacheContext()
		n = &notifier{ctx: cacheCtx}
		if err = op(cacheCtx, n); err == nil {
			write()
		}
	})

	k.listenersMu.RLock()
	listeners := k.listeners
	k.listenersMu.RUnlock()

	// mempool checks and simulations never reach listeners
	if ctx.IsCheckTx() || ctx.ExecMode() == sdk.ExecModeSimulate {
		listeners = nil
	}

	elapsed := time.Since(start)
	for _, l := range listeners {
		if observer, ok := l.(types.OperationObserver); ok {
			observer.ObserveOperation(name, elapsed, err)
		}
		if err != nil {
			continue
		}
		for _, notification := range n.pending {
			l.OnNotification(ctx, notification)
		}
	}

	if err != nil {
		k.logger.Debug("Operation rejected", "op", name, "error", err.Error())
		return err
	}
	return nil
}
