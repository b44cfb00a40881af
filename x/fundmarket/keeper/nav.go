package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// SetSubscribeNav appends a subscribe NAV checkpoint; subscribe-NAV manager only
func (k *Keeper) SetSubscribeNav(ctx context.Context, manager, poolID string, timestamp int64, nav sdkmath.Int) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	err := k.execute(sdkCtx, "set_subscribe_nav", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if pool.Config.SubscribeNavManager != manager {
			return types.ErrNotNavManager
		}
		if nav.IsNil() || !nav.IsPositive() {
			return types.ErrInvalidNav
		}

		latest, found := k.latestNavCheckpoint(cacheCtx, poolID, math.MaxInt64)
		if found && timestamp <= latest.Timestamp {
			return types.ErrInvalidNavTime
		}
		if timestamp < pool.Config.ValueDate {
			return types.ErrInvalidNavTime
		}

		k.setNavCheckpoint(cacheCtx, poolID, types.NavCheckpoint{Timestamp: timestamp, Nav: nav})
		n.emit(types.SubscribeNavSet{PoolID: poolID, Nav: nav, Timestamp: timestamp})
		return nil
	})
	if err != nil {
		return err
	}

	k.logger.Info("Subscribe NAV set",
		"pool_id", poolID,
		"timestamp", timestamp,
		"nav", nav.String(),
	)
	return nil
}

// LookupSubscribeNav returns the latest checkpoint with timestamp <= at.
// Before the value date the seed checkpoint applies.
func (k *Keeper) LookupSubscribeNav(ctx sdk.Context, poolID string, at int64) (types.NavCheckpoint, error) {
	checkpoint, found := k.latestNavCheckpoint(ctx, poolID, at)
	if !found {
		checkpoint, found = k.firstNavCheckpoint(ctx, poolID)
	}
	if !found {
		return types.NavCheckpoint{}, types.ErrNavNotFound
	}
	return checkpoint, nil
}

// AllTimeHighRedeemNav returns the carry baseline of a pool. A pool that was
// never priced starts at the initial NAV; an unreadable entry panics rather
// than lowering the baseline.
func (k *Keeper) AllTimeHighRedeemNav(ctx sdk.Context, poolID string) sdkmath.Int {
	bz := k.GetStore(ctx).Get(types.AllTimeHighNavKey(poolID))
	if bz == nil {
		return types.InitialNav()
	}
	var nav sdkmath.Int
	if err := nav.Unmarshal(bz); err != nil {
		panic(fmt.Errorf("corrupt all-time high nav for pool %s: %w", poolID, err))
	}
	return nav
}

func (k *Keeper) setAllTimeHighNav(ctx sdk.Context, poolID string, nav sdkmath.Int) {
	bz, _ := nav.Marshal()
	k.GetStore(ctx).Set(types.AllTimeHighNavKey(poolID), bz)
}

func (k *Keeper) setNavCheckpoint(ctx sdk.Context, poolID string, checkpoint types.NavCheckpoint) {
	bz, _ := json.Marshal(checkpoint)
	k.GetStore(ctx).Set(types.NavCheckpointKey(poolID, checkpoint.Timestamp), bz)
}

// latestNavCheckpoint walks the pool's checkpoints backwards from at; keys are
// ordered by timestamp so the first hit is the answer.
func (k *Keeper) latestNavCheckpoint(ctx sdk.Context, poolID string, at int64) (types.NavCheckpoint, bool) {
	if at < 0 {
		return types.NavCheckpoint{}, false
	}
	prefix := types.NavCheckpointPrefix(poolID)
	end := storetypes.PrefixEndBytes(prefix)
	if at < math.MaxInt64 {
		end = types.NavCheckpointKey(poolID, at+1)
	}

	iterator := k.GetStore(ctx).ReverseIterator(prefix, end)
	defer iterator.Close()
	if !iterator.Valid() {
		return types.NavCheckpoint{}, false
	}

	var checkpoint types.NavCheckpoint
	if err := json.Unmarshal(iterator.Value(), &checkpoint); err != nil {
		return types.NavCheckpoint{}, false
	}
	return checkpoint, true
}

func (k *Keeper) firstNavCheckpoint(ctx sdk.Context, poolID string) (types.NavCheckpoint, bool) {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.NavCheckpointPrefix(poolID))
	defer iterator.Close()
	if !iterator.Valid() {
		return types.NavCheckpoint{}, false
	}

	var checkpoint types.NavCheckpoint
	if err := json.Unmarshal(iterator.Value(), &checkpoint); err != nil {
		return types.NavCheckpoint{}, false
	}
	return checkpoint, true
}

// GetNavCheckpoints returns all checkpoints of a pool in timestamp order
func (k *Keeper) GetNavCheckpoints(ctx sdk.Context, poolID string) []types.NavCheckpoint {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.NavCheckpointPrefix(poolID))
	defer iterator.Close()

	var checkpoints []types.NavCheckpoint
	for ; iterator.Valid(); iterator.Next() {
		var checkpoint types.NavCheckpoint
		if err := json.Unmarshal(iterator.Value(), &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints
}
