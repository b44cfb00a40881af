package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// SubscriptionResult describes the share value credited by a subscription
type SubscriptionResult struct {
	PositionID uint64
	Value      math.Int
	Nav        math.Int
}

// Subscribe converts amount of the pool currency into share value at the
// subscribe NAV in force at block time. positionID zero mints a new position.
func (k *Keeper) Subscribe(ctx context.Context, buyer, poolID string, amount math.Int, positionID uint64, deadline int64) (*SubscriptionResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	var result *SubscriptionResult
	var pool *types.Pool
	err := k.execute(sdkCtx, "subscribe", func(cacheCtx sdk.Context, n *notifier) error {
		current := now(cacheCtx)
		if current > deadline {
			return types.ErrExpired
		}

		pool = k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if amount.IsNil() || !amount.IsPositive() {
			return types.ErrInvalidAmount
		}
		if !k.IsWhitelisted(cacheCtx, pool, buyer) {
			return types.ErrNotWhitelisted
		}

		limit := pool.Config.SubscribeLimit
		if current < limit.FundraisingStart {
			return types.ErrFundraisingNotStart
		}
		if current > limit.FundraisingEnd {
			return types.ErrFundraisingEnded
		}

		if positionID != 0 {
			if err := k.checkSharePosition(cacheCtx, pool, positionID); err != nil {
				return err
			}
		}

		beforeValueDate := pool.BeforeValueDate(current)
		if beforeValueDate && pool.FundraisingAmount.Add(amount).GT(limit.HardCap) {
			return types.ErrHardCapReached
		}
		if amount.LT(limit.SubscribeMin) {
			return types.ErrBelowSubscribeMin
		}
		if amount.GT(limit.SubscribeMax) {
			return types.ErrAboveSubscribeMax
		}

		if err := k.transferToVault(cacheCtx, pool, buyer, amount); err != nil {
			return err
		}

		checkpoint, err := k.LookupSubscribeNav(cacheCtx, poolID, current)
		if err != nil {
			return err
		}
		value := types.ValueForCurrency(amount, checkpoint.Nav)
		if !value.IsPositive() {
			return errorsmod.Wrap(types.ErrInvalidAmount, "amount too small for nav")
		}

		id, err := k.ledger.MintValue(cacheCtx, pool.Config.ShareLedger, buyer, pool.ShareGroupingID, positionID, value)
		if err != nil {
			return err
		}

		if beforeValueDate {
			pool.FundraisingAmount = pool.FundraisingAmount.Add(amount)
			k.SetPool(cacheCtx, pool)
		}

		result = &SubscriptionResult{PositionID: id, Value: value, Nav: checkpoint.Nav}
		n.emit(types.Subscribed{
			PoolID:     poolID,
			Buyer:      buyer,
			PositionID: id,
			Value:      value,
			Currency:   pool.Config.Currency,
			Nav:        checkpoint.Nav,
			Payment:    amount,

			CountsTowardCap: beforeValueDate,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("Subscription processed",
		"pool_id", poolID,
		"buyer", buyer,
		"position_id", result.PositionID,
		"payment", amount.String(),
		"value", result.Value.String(),
		"nav", result.Nav.String(),
		"fundraising_amount", pool.FundraisingAmount.String(),
	)
	return result, nil
}

// checkSharePosition verifies an existing share position can receive value.
// Any buyer may add to a position; the value accrues to its holder.
func (k *Keeper) checkSharePosition(ctx sdk.Context, pool *types.Pool, positionID uint64) error {
	grouping, err := k.ledger.GroupOf(ctx, pool.Config.ShareLedger, positionID)
	if err != nil {
		return errorsmod.Wrapf(types.ErrNotFound, "share position %d: %s", positionID, err)
	}
	if grouping != pool.ShareGroupingID {
		return types.ErrSlotMismatch
	}
	return nil
}

func (k *Keeper) transferToVault(ctx sdk.Context, pool *types.Pool, buyer string, amount math.Int) error {
	from, err := sdk.AccAddressFromBech32(buyer)
	if err != nil {
		return errorsmod.Wrap(types.ErrInvalidAddress, err.Error())
	}
	vault, err := sdk.AccAddressFromBech32(pool.Config.Vault)
	if err != nil {
		return errorsmod.Wrap(types.ErrInvalidVault, err.Error())
	}
	if err := k.bankKeeper.SendCoins(ctx, from, vault, k.currencyCoins(pool.Config.Currency, amount)); err != nil {
		return errorsmod.Wrap(types.ErrCurrencyTransfer, err.Error())
	}
	return nil
}
