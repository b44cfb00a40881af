package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// SetRedeemNav prices a closed slot exactly once; redeem-NAV manager only.
// Carry is charged on the NAV gain over the pool's all-time-high and the
// all-time-high moves to the gross NAV.
func (k *Keeper) SetRedeemNav(ctx context.Context, manager, poolID, slotID string, nav, repaidBalanceAtSet math.Int) (types.CarryResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	poolLock := k.locks.pool(poolID)
	poolLock.Lock()
	defer poolLock.Unlock()
	slotLock := k.locks.slot(slotID)
	slotLock.Lock()
	defer slotLock.Unlock()

	var result types.CarryResult
	var ath math.Int
	err := k.execute(sdkCtx, "set_redeem_nav", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if pool.Config.RedeemNavManager != manager {
			return types.ErrNotNavManager
		}
		slot := k.GetRedeemSlot(cacheCtx, slotID)
		if slot == nil || slot.PoolID != poolID {
			return types.ErrSlotNotFound
		}
		switch slot.Status {
		case types.SlotStatusPriced:
			return types.ErrRedeemNavAlreadySet
		case types.SlotStatusOpen:
			return types.ErrSlotNotClosed
		}
		if nav.IsNil() || !nav.IsPositive() {
			return types.ErrInvalidNav
		}
		if repaidBalanceAtSet.IsNil() {
			repaidBalanceAtSet = math.ZeroInt()
		}

		ath = k.AllTimeHighRedeemNav(cacheCtx, poolID)
		result = types.ComputeCarry(nav, ath, slot.TotalValue, pool.Config.CarryRate)
		if result.CarryAmount.IsPositive() {
			n.emit(types.CarrySettled{PoolID: poolID, SlotID: slotID, CarryAmount: result.CarryAmount})
		}

		ath = types.MaxNav(ath, nav)
		k.setAllTimeHighNav(cacheCtx, poolID, ath)

		slot.Status = types.SlotStatusPriced
		slot.RedeemNav = result.PerUnitNav
		slot.CarryAmount = result.CarryAmount
		slot.RepaidBalanceAtSet = repaidBalanceAtSet
		slot.PricedAt = now(cacheCtx)
		k.SetRedeemSlot(cacheCtx, slot)

		n.emit(types.RedeemNavSet{PoolID: poolID, SlotID: slotID, Nav: result.PerUnitNav, GrossNav: nav})
		return nil
	})
	if err != nil {
		return types.CarryResult{}, err
	}

	k.logger.Info("Redeem NAV set",
		"pool_id", poolID,
		"slot_id", slotID,
		"nav", nav.String(),
		"per_unit_nav", result.PerUnitNav.String(),
		"carry_amount", result.CarryAmount.String(),
		"all_time_high", ath.String(),
	)
	return result, nil
}

// Repay escrows currency into a priced slot. Overpayment is accepted.
func (k *Keeper) Repay(ctx context.Context, payer, slotID, currency string, amount math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.slot(slotID)
	lock.Lock()
	defer lock.Unlock()

	var escrow math.Int
	err := k.execute(sdkCtx, "repay", func(cacheCtx sdk.Context, n *notifier) error {
		slot := k.GetRedeemSlot(cacheCtx, slotID)
		if slot == nil {
			return types.ErrSlotNotFound
		}
		pool := k.GetPool(cacheCtx, slot.PoolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if !slot.IsPriced() {
			return types.ErrRedeemNavNotSet
		}
		if currency != pool.Config.Currency {
			return types.ErrCurrencyMismatch
		}
		if amount.IsNil() || !amount.IsPositive() {
			return types.ErrInvalidAmount
		}

		from, err := sdk.AccAddressFromBech32(payer)
		if err != nil {
			return errorsmod.Wrap(types.ErrInvalidAddress, err.Error())
		}
		if err := k.bankKeeper.SendCoinsFromAccountToModule(cacheCtx, from, types.ModuleName, k.currencyCoins(currency, amount)); err != nil {
			return errorsmod.Wrap(types.ErrCurrencyTransfer, err.Error())
		}

		slot.EscrowBalance = slot.EscrowBalance.Add(amount)
		k.SetRedeemSlot(cacheCtx, slot)
		escrow = slot.EscrowBalance

		n.emit(types.Repaid{
			SlotID:        slotID,
			Currency:      currency,
			Amount:        amount,
			EscrowBalance: escrow,
			PoolID:        slot.PoolID,
		})
		return nil
	})
	if err != nil {
		return math.Int{}, err
	}

	k.logger.Info("Slot repaid",
		"slot_id", slotID,
		"payer", payer,
		"amount", amount.String(),
		"escrow_balance", escrow.String(),
	)
	return escrow, nil
}

// Claim burns claimValue of a priced redemption and pays the owed currency
// from the slot's escrow to recipient. A shortfall in escrow fails the claim;
// it can be retried after further repayment.
func (k *Keeper) Claim(ctx context.Context, owner, recipient string, redemptionID uint64, currency string, claimValue math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	var origin *types.RedemptionOrigin
	k.withStore(func() { origin = k.GetRedemptionOrigin(sdkCtx, redemptionID) })
	if origin == nil {
		return math.Int{}, types.ErrRedemptionNotFound
	}
	lock := k.locks.slot(origin.SlotID)
	lock.Lock()
	defer lock.Unlock()

	var owed math.Int
	err := k.execute(sdkCtx, "claim", func(cacheCtx sdk.Context, n *notifier) error {
		origin := k.GetRedemptionOrigin(cacheCtx, redemptionID)
		if origin == nil {
			return types.ErrRedemptionNotFound
		}
		pool := k.GetPool(cacheCtx, origin.PoolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		ledger := pool.Config.RedemptionLedger

		holder, err := k.ledger.OwnerOf(cacheCtx, ledger, redemptionID)
		if err != nil {
			return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
		}
		if holder != owner {
			return types.ErrNotPositionOwner
		}
		if claimValue.IsNil() || !claimValue.IsPositive() {
			return types.ErrInvalidAmount
		}
		remaining, err := k.ledger.ValueOf(cacheCtx, ledger, redemptionID)
		if err != nil {
			return errorsmod.Wrap(types.ErrRedemptionNotFound, err.Error())
		}
		if claimValue.GT(remaining) {
			return errorsmod.Wrapf(types.ErrInsufficientValue, "redemption %d holds %s", redemptionID, remaining)
		}

		slot := k.GetRedeemSlot(cacheCtx, origin.SlotID)
		if slot == nil {
			return types.ErrSlotNotFound
		}
		if !slot.IsPriced() {
			return types.ErrRedeemNavNotSet
		}
		if currency != pool.Config.Currency {
			return types.ErrCurrencyMismatch
		}

		owed = types.CurrencyForValue(claimValue, slot.RedeemNav)
		if slot.EscrowBalance.LT(owed) {
			return errorsmod.Wrapf(types.ErrInsufficientRepayment, "owed %s, escrow %s", owed, slot.EscrowBalance)
		}

		if err := k.ledger.BurnValue(cacheCtx, ledger, redemptionID, claimValue); err != nil {
			return err
		}
		if claimValue.Equal(remaining) {
			k.DeleteRedemptionOrigin(cacheCtx, redemptionID)
		}

		slot.EscrowBalance = slot.EscrowBalance.Sub(owed)
		k.SetRedeemSlot(cacheCtx, slot)

		if owed.IsPositive() {
			to, err := sdk.AccAddressFromBech32(recipient)
			if err != nil {
				return errorsmod.Wrap(types.ErrInvalidAddress, err.Error())
			}
			if err := k.bankKeeper.SendCoinsFromModuleToAccount(cacheCtx, types.ModuleName, to, k.currencyCoins(currency, owed)); err != nil {
				return errorsmod.Wrap(types.ErrCurrencyTransfer, err.Error())
			}
		}

		n.emit(types.Claimed{
			RedemptionID:   redemptionID,
			CurrencyAmount: owed,
			PoolID:         pool.PoolID,
			SlotID:         slot.SlotID,
			EscrowBalance:  slot.EscrowBalance,
		})
		return nil
	})
	if err != nil {
		return math.Int{}, err
	}

	k.logger.Info("Redemption claimed",
		"redemption_id", redemptionID,
		"recipient", recipient,
		"value", claimValue.String(),
		"currency_amount", owed.String(),
	)
	return owed, nil
}
