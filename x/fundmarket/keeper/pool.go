package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// CreatePool validates config and registers a new pool issued by issuer.
// Checks run in a fixed order and the first violation is returned.
func (k *Keeper) CreatePool(ctx context.Context, issuer string, config types.PoolConfig) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	createTime := now(sdkCtx)
	attrs := types.ShareGroupingAttributes(issuer, config, createTime)
	groupingID := k.ledger.DeriveGroupingID(config.ShareLedger, attrs)
	poolID := types.DerivePoolID(config.ShareLedger, groupingID)

	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	var pool *types.Pool
	err := k.execute(sdkCtx, "create_pool", func(cacheCtx sdk.Context, n *notifier) error {
		if err := k.validatePoolConfig(cacheCtx, issuer, config); err != nil {
			return err
		}
		if k.GetPool(cacheCtx, poolID) != nil {
			return types.ErrPoolAlreadyExists
		}

		if _, err := k.ledger.CreateGrouping(cacheCtx, config.ShareLedger, issuer, attrs); err != nil {
			return errorsmod.Wrap(types.ErrPoolAlreadyExists, err.Error())
		}

		pool = types.NewPool(poolID, groupingID, issuer, config, createTime)
		k.SetPool(cacheCtx, pool)
		k.SetWhitelist(cacheCtx, poolID, config.Whitelist)

		seed := types.InitialNav()
		k.setNavCheckpoint(cacheCtx, poolID, types.NavCheckpoint{Timestamp: config.ValueDate, Nav: seed})
		k.setAllTimeHighNav(cacheCtx, poolID, seed)

		n.emit(types.PoolCreated{
			PoolID:          poolID,
			Currency:        config.Currency,
			ShareLedger:     config.ShareLedger,
			ShareGroupingID: groupingID,
		})
		n.emit(types.SubscribeNavSet{PoolID: poolID, Nav: seed, Timestamp: config.ValueDate})
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("Pool created",
		"pool_id", pool.PoolID,
		"issuer", issuer,
		"currency", config.Currency,
		"value_date", config.ValueDate,
		"hard_cap", config.SubscribeLimit.HardCap.String(),
	)
	return pool, nil
}

func (k *Keeper) validatePoolConfig(ctx sdk.Context, issuer string, config types.PoolConfig) error {
	params := k.GetParams(ctx)
	limit := config.SubscribeLimit
	current := now(ctx)

	if !params.IsCurrencyAllowed(config.Currency) {
		return types.ErrCurrencyNotAllowed
	}

	shareLedger, ok := params.LedgerManagerOf(config.ShareLedger)
	if !ok {
		return types.ErrShareLedgerNotAllowed
	}
	if !shareLedger.CanManage(issuer) {
		return types.ErrInvalidShareManager
	}
	redemptionLedger, ok := params.LedgerManagerOf(config.RedemptionLedger)
	if !ok {
		return types.ErrRedeemLedgerNotAllowed
	}
	if !redemptionLedger.CanManage(issuer) {
		return types.ErrInvalidRedeemManager
	}

	if limit.SubscribeMin.IsNil() || limit.SubscribeMax.IsNil() || limit.HardCap.IsNil() {
		return errorsmod.Wrap(types.ErrInvalidPoolConfig, "subscribe limits must be set")
	}
	if limit.SubscribeMin.GT(limit.SubscribeMax) {
		return types.ErrInvalidMinMax
	}
	if config.ValueDate < limit.FundraisingStart {
		return types.ErrInvalidValueDate
	}
	if limit.FundraisingStart > limit.FundraisingEnd {
		return types.ErrInvalidFundraisingWindow
	}
	if limit.FundraisingEnd < current {
		return types.ErrInvalidFundraisingEnd
	}
	if err := k.ledger.ValidateValueDate(ctx, config.ShareLedger, config.ValueDate, current); err != nil {
		return errorsmod.Wrap(types.ErrInvalidValueDate, err.Error())
	}
	if limit.FundraisingEnd < config.ValueDate {
		return types.ErrInvalidMaturity
	}

	switch {
	case config.Vault == "":
		return types.ErrInvalidVault
	case config.CarryCollector == "":
		return types.ErrInvalidCarryCollector
	case config.SubscribeNavManager == "":
		return types.ErrInvalidSubscribeNavMgr
	case config.RedeemNavManager == "":
		return types.ErrInvalidRedeemNavMgr
	}

	if config.CarryRate > types.MaxCarryRate {
		return types.ErrInvalidCarryRate
	}
	if !k.ledger.IsCurrencyAllowed(ctx, config.ShareLedger, config.Currency) {
		return errorsmod.Wrap(types.ErrCurrencyNotAllowed, "rejected by share ledger")
	}
	return nil
}

// UpdateWhitelist replaces the whitelist of a restricted pool; pool manager only
func (k *Keeper) UpdateWhitelist(ctx context.Context, manager, poolID string, whitelist []string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lock := k.locks.pool(poolID)
	lock.Lock()
	defer lock.Unlock()

	err := k.execute(sdkCtx, "update_whitelist", func(cacheCtx sdk.Context, n *notifier) error {
		pool := k.GetPool(cacheCtx, poolID)
		if pool == nil {
			return types.ErrPoolNotFound
		}
		if pool.PoolManager != manager {
			return types.ErrNotPoolManager
		}
		if pool.Permissionless {
			return types.ErrPoolIsPermissionless
		}

		pool.Config.Whitelist = whitelist
		k.SetPool(cacheCtx, pool)
		k.SetWhitelist(cacheCtx, poolID, whitelist)
		n.emit(types.WhitelistUpdated{PoolID: poolID, Count: len(whitelist)})
		return nil
	})
	if err != nil {
		return err
	}

	k.logger.Info("Whitelist updated", "pool_id", poolID, "entries", len(whitelist))
	return nil
}

// IsWhitelisted reports whether addr may subscribe to the pool
func (k *Keeper) IsWhitelisted(ctx sdk.Context, pool *types.Pool, addr string) bool {
	if pool.Permissionless {
		return true
	}
	return k.whitelist.IsWhitelisted(ctx, pool.PoolID, addr)
}
