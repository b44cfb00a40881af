package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// RedeemRequestResult identifies where requested value landed
type RedeemRequestResult struct {
	RedemptionID uint64
	SlotID       string
}

// RequestRedeem moves value from a share position into the pool's current
// redeem slot. redemptionID zero creates a new redemption position.
func (k *Keeper) RequestRedeem(ctx context.Context, owner, poolID string, shareID, redemptionID uint64, value math.Int) (*RedeemRequestResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	var result *RedeemRequestResult
	err := k.execute(sdkCtx, "request_redeem", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if value.IsNil() || !value.IsPositive() {
			return types.ErrInvalidAmount
		}
		if err := k.checkSharePosition(cacheCtx, pool, owner, shareID); err != nil {
			return err
		}
		balance, err := k.ledger.ValueOf(cacheCtx, pool.Config.ShareLedger, shareID)
		if err != nil {
			return errorsmod.Wrapf(types.ErrNotFound, "share position %d: %s", shareID, err)
		}
		if balance.LT(value) {
			return errorsmod.Wrapf(types.ErrInsufficientValue, "share %d holds %s", shareID, balance)
		}

		slot, err := k.ensureCurrentSlot(cacheCtx, pool)
		if err != nil {
			return err
		}

		if redemptionID != 0 {
			if err := k.checkRedemptionInSlot(cacheCtx, pool, owner, redemptionID, slot.SlotID); err != nil {
				return err
			}
		}

		if err := k.ledger.BurnValue(cacheCtx, pool.Config.ShareLedger, shareID, value); err != nil {
			return err
		}
		id, err := k.ledger.MintValue(cacheCtx, pool.Config.RedemptionLedger, owner, slot.SlotID, redemptionID, value)
		if err != nil {
			return err
		}
		if redemptionID == 0 {
			k.SetRedemptionOrigin(cacheCtx, &types.RedemptionOrigin{
				RedemptionID:  id,
				PoolID:        poolID,
				SlotID:        slot.SlotID,
				OriginShareID: shareID,
			})
		}

		slot.TotalValue = slot.TotalValue.Add(value)
		k.SetRedeemSlot(cacheCtx, slot)

		result = &RedeemRequestResult{RedemptionID: id, SlotID: slot.SlotID}
		n.emit(types.RedeemRequested{
			PoolID:       poolID,
			Buyer:        owner,
			ShareID:      shareID,
			RedemptionID: id,
			Value:        value,
			SlotID:       slot.SlotID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("Redemption requested",
		"pool_id", poolID,
		"owner", owner,
		"share_id", shareID,
		"redemption_id", result.RedemptionID,
		"slot_id", result.SlotID,
		"value", value.String(),
	)
	return result, nil
}

// RevokeRedeem returns a redemption's full value to a share position while the
// redemption's slot is still the pool's open slot. Value is restored unit for
// unit; no NAV is applied.
func (k *Keeper) RevokeRedeem(ctx context.Context, owner, poolID string, redemptionID uint64) (uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	var shareID uint64
	var value math.Int
	err := k.execute(sdkCtx, "revoke_redeem", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		origin := k.GetRedemptionOrigin(cacheCtx, redemptionID)
		if origin == nil || origin.PoolID != poolID {
			return types.ErrRedemptionNotFound
		}
		holder, err := k.ledger.OwnerOf(cacheCtx, pool.Config.RedemptionLedger, redemptionID)
		if err != nil {
			return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
		}
		if holder != owner {
			return types.ErrNotPositionOwner
		}
		if origin.SlotID != pool.CurrentRedeemSlotID {
			return types.ErrSlotClosed
		}
		slot := k.GetRedeemSlot(cacheCtx, origin.SlotID)
		if slot == nil {
			return types.ErrSlotNotFound
		}
		if !slot.IsOpen() {
			return types.ErrSlotClosed
		}

		value, err = k.ledger.ValueOf(cacheCtx, pool.Config.RedemptionLedger, redemptionID)
		if err != nil {
			return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
		}
		if err := k.ledger.BurnValue(cacheCtx, pool.Config.RedemptionLedger, redemptionID, value); err != nil {
			return err
		}
		k.DeleteRedemptionOrigin(cacheCtx, redemptionID)

		target := uint64(0)
		if k.checkSharePosition(cacheCtx, pool, owner, origin.OriginShareID) == nil {
			target = origin.OriginShareID
		}
		shareID, err = k.ledger.MintValue(cacheCtx, pool.Config.ShareLedger, owner, pool.ShareGroupingID, target, value)
		if err != nil {
			return err
		}

		slot.TotalValue = slot.TotalValue.Sub(value)
		k.SetRedeemSlot(cacheCtx, slot)

		n.emit(types.RedeemRevoked{
			RedemptionID: redemptionID,
			ShareID:      shareID,
			Value:        value,
			PoolID:       poolID,
			SlotID:       slot.SlotID,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	k.logger.Info("Redemption revoked",
		"pool_id", poolID,
		"owner", owner,
		"redemption_id", redemptionID,
		"share_id", shareID,
		"value", value.String(),
	)
	return shareID, nil
}

// CloseCurrentRedeemSlot freezes the pool's open slot and opens the next one;
// pool manager only. Returns the closed slot id and the new current slot id.
func (k *Keeper) CloseCurrentRedeemSlot(ctx context.Context, manager, poolID string) (string, string, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	var closedID, nextID string
	err := k.execute(sdkCtx, "close_redeem_slot", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if pool.PoolManager != manager {
			return types.ErrNotPoolManager
		}

		closed, err := k.ensureCurrentSlot(cacheCtx, pool)
		if err != nil {
			return err
		}
		closed.Status = types.SlotStatusClosed
		closed.ClosedAt = now(cacheCtx)
		k.SetRedeemSlot(cacheCtx, closed)

		pool.CurrentRedeemSlotID = ""
		next, err := k.ensureCurrentSlot(cacheCtx, pool)
		if err != nil {
			return err
		}

		closedID, nextID = closed.SlotID, next.SlotID
		n.emit(types.RedeemSlotClosed{PoolID: poolID, SlotID: closedID})
		return nil
	})
	if err != nil {
		return "", "", err
	}

	k.logger.Info("Redeem slot closed",
		"pool_id", poolID,
		"slot_id", closedID,
		"next_slot_id", nextID,
	)
	return closedID, nextID, nil
}

// ensureCurrentSlot returns the pool's open slot, allocating the next
// sequence in the redemption ledger when none is open. The caller holds the
// pool lock; the pool is saved when a slot is allocated.
func (k *Keeper) ensureCurrentSlot(ctx sdk.Context, pool *types.Pool) (*types.RedeemSlot, error) {
	if pool.HasOpenSlot() {
		slot := k.GetRedeemSlot(ctx, pool.CurrentRedeemSlotID)
		if slot == nil {
			return nil, types.ErrSlotNotFound
		}
		return slot, nil
	}

	pool.RedeemSlotSequence++
	attrs := types.RedeemSlotAttributes(pool.PoolID, pool.RedeemSlotSequence)
	slotID, err := k.ledger.CreateGrouping(ctx, pool.Config.RedemptionLedger, pool.PoolManager, attrs)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidState, "allocate redeem slot %d: %s", pool.RedeemSlotSequence, err)
	}

	slot := types.NewRedeemSlot(slotID, pool.PoolID, pool.RedeemSlotSequence, now(ctx))
	k.SetRedeemSlot(ctx, slot)
	pool.CurrentRedeemSlotID = slotID
	k.SetPool(ctx, pool)
	return slot, nil
}

// checkRedemptionInSlot verifies an existing redemption can receive more value
func (k *Keeper) checkRedemptionInSlot(ctx sdk.Context, pool *types.Pool, owner string, redemptionID uint64, slotID string) error {
	grouping, err := k.ledger.GroupOf(ctx, pool.Config.RedemptionLedger, redemptionID)
	if err != nil {
		return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
	}
	if grouping != slotID {
		return types.ErrSlotMismatch
	}
	holder, err := k.ledger.OwnerOf(ctx, pool.Config.RedemptionLedger, redemptionID)
	if err != nil {
		return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
	}
	if holder != owner {
		return types.ErrNotPositionOwner
	}
	return nil
}
