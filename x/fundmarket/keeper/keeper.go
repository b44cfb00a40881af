package keeper

import (
	"context"
	"encoding/json"
	"sync"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// Keeper manages the fundmarket module state
type Keeper struct {
	cdc         codec.BinaryCodec
	storeKey    storetypes.StoreKey
	bankKeeper  types.BankKeeper
	ledger      types.ValueLedger
	whitelist   types.WhitelistChecker
	logger      log.Logger
	authority   string
	locks       *lockTable
	storeMu     sync.Mutex
	listenersMu sync.RWMutex
	listeners   []types.Listener
}

// NewKeeper creates a new fundmarket keeper. The keeper answers whitelist
// lookups from its own store unless SetWhitelistChecker overrides it.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	ledger types.ValueLedger,
	authority string,
	logger log.Logger,
) *Keeper {
	k := &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		ledger:     ledger,
		authority:  authority,
		logger:     logger.With("module", "x/fundmarket"),
		locks:      newLockTable(),
	}
	k.whitelist = storeWhitelist{k}
	return k
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// SetWhitelistChecker replaces the whitelist lookup
func (k *Keeper) SetWhitelistChecker(checker types.WhitelistChecker) {
	k.whitelist = checker
}

// AddListener registers a listener for committed notifications
func (k *Keeper) AddListener(l types.Listener) {
	k.listenersMu.Lock()
	defer k.listenersMu.Unlock()
	k.listeners = append(k.listeners, l)
}

// ============ Params ============

// SetParams saves the market params
func (k *Keeper) SetParams(ctx sdk.Context, params types.Params) {
	bz, _ := json.Marshal(params)
	k.GetStore(ctx).Set(types.ParamsKey, bz)
}

// GetParams returns the market params
func (k *Keeper) GetParams(ctx sdk.Context) types.Params {
	bz := k.GetStore(ctx).Get(types.ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.DefaultParams()
	}
	return params
}

// UpdateParams replaces the params; only the authority may call it
func (k *Keeper) UpdateParams(ctx context.Context, authority string, params types.Params) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if authority != k.authority {
		return types.ErrInvalidAuthority
	}
	if err := params.Validate(); err != nil {
		return err
	}
	k.SetParams(sdkCtx, params)
	k.logger.Info("Params updated",
		"currencies", len(params.AllowedCurrencies),
		"ledgers", len(params.Ledgers),
	)
	return nil
}

// ============ Pool Operations ============

// SetPool saves a pool to the store
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	bz, _ := json.Marshal(pool)
	k.GetStore(ctx).Set(types.PoolKey(pool.PoolID), bz)
}

// GetPool retrieves a pool from the store
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) *types.Pool {
	bz := k.GetStore(ctx).Get(types.PoolKey(poolID))
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// ============ Redeem Slot Operations ============

// SetRedeemSlot saves a slot and its (pool, sequence) index entry
func (k *Keeper) SetRedeemSlot(ctx sdk.Context, slot *types.RedeemSlot) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(slot)
	store.Set(types.RedeemSlotKey(slot.SlotID), bz)
	store.Set(types.PoolSlotIndexKey(slot.PoolID, slot.Sequence), []byte(slot.SlotID))
}

// GetRedeemSlot retrieves a slot by its id
func (k *Keeper) GetRedeemSlot(ctx sdk.Context, slotID string) *types.RedeemSlot {
	bz := k.GetStore(ctx).Get(types.RedeemSlotKey(slotID))
	if bz == nil {
		return nil
	}
	var slot types.RedeemSlot
	if err := json.Unmarshal(bz, &slot); err != nil {
		return nil
	}
	return &slot
}

// GetRedeemSlotBySequence retrieves a pool's slot by sequence number
func (k *Keeper) GetRedeemSlotBySequence(ctx sdk.Context, poolID string, sequence uint64) *types.RedeemSlot {
	slotID := k.GetStore(ctx).Get(types.PoolSlotIndexKey(poolID, sequence))
	if slotID == nil {
		return nil
	}
	return k.GetRedeemSlot(ctx, string(slotID))
}

// GetRedeemSlotsByPool returns a pool's slots ordered by sequence
func (k *Keeper) GetRedeemSlotsByPool(ctx sdk.Context, poolID string) []*types.RedeemSlot {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.PoolSlotIndexPrefix(poolID))
	defer iterator.Close()

	var slots []*types.RedeemSlot
	for ; iterator.Valid(); iterator.Next() {
		if slot := k.GetRedeemSlot(ctx, string(iterator.Value())); slot != nil {
			slots = append(slots, slot)
		}
	}
	return slots
}

// GetAllRedeemSlots returns every slot of every pool
func (k *Keeper) GetAllRedeemSlots(ctx sdk.Context) []*types.RedeemSlot {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.RedeemSlotKeyPrefix)
	defer iterator.Close()

	var slots []*types.RedeemSlot
	for ; iterator.Valid(); iterator.Next() {
		var slot types.RedeemSlot
		if err := json.Unmarshal(iterator.Value(), &slot); err != nil {
			continue
		}
		slots = append(slots, &slot)
	}
	return slots
}

// ============ Redemption Origin Operations ============

// SetRedemptionOrigin saves a redemption's back-reference
func (k *Keeper) SetRedemptionOrigin(ctx sdk.Context, origin *types.RedemptionOrigin) {
	bz, _ := json.Marshal(origin)
	k.GetStore(ctx).Set(types.RedemptionOriginKey(origin.RedemptionID), bz)
}

// GetRedemptionOrigin retrieves a redemption's back-reference
func (k *Keeper) GetRedemptionOrigin(ctx sdk.Context, redemptionID uint64) *types.RedemptionOrigin {
	bz := k.GetStore(ctx).Get(types.RedemptionOriginKey(redemptionID))
	if bz == nil {
		return nil
	}
	var origin types.RedemptionOrigin
	if err := json.Unmarshal(bz, &origin); err != nil {
		return nil
	}
	return &origin
}

// DeleteRedemptionOrigin removes a back-reference once the redemption is gone
func (k *Keeper) DeleteRedemptionOrigin(ctx sdk.Context, redemptionID uint64) {
	k.GetStore(ctx).Delete(types.RedemptionOriginKey(redemptionID))
}

// GetAllRedemptionOrigins returns every stored back-reference
func (k *Keeper) GetAllRedemptionOrigins(ctx sdk.Context) []types.RedemptionOrigin {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.RedemptionOriginKeyPrefix)
	defer iterator.Close()

	var origins []types.RedemptionOrigin
	for ; iterator.Valid(); iterator.Next() {
		var origin types.RedemptionOrigin
		if err := json.Unmarshal(iterator.Value(), &origin); err != nil {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

// ============ Whitelist ============

// SetWhitelist replaces the whitelist entries of a pool
func (k *Keeper) SetWhitelist(ctx sdk.Context, poolID string, addrs []string) {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.WhitelistPrefix(poolID))
	var stale [][]byte
	for ; iterator.Valid(); iterator.Next() {
		stale = append(stale, append([]byte{}, iterator.Key()...))
	}
	iterator.Close()

	for _, key := range stale {
		store.Delete(key)
	}
	for _, addr := range addrs {
		store.Set(types.WhitelistKey(poolID, addr), []byte{1})
	}
}

// GetWhitelist returns the whitelisted addresses of a pool
func (k *Keeper) GetWhitelist(ctx sdk.Context, poolID string) []string {
	prefix := types.WhitelistPrefix(poolID)
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), prefix)
	defer iterator.Close()

	var addrs []string
	for ; iterator.Valid(); iterator.Next() {
		addrs = append(addrs, string(iterator.Key()[len(prefix):]))
	}
	return addrs
}

type storeWhitelist struct {
	k *Keeper
}

func (w storeWhitelist) IsWhitelisted(ctx context.Context, poolID, addr string) bool {
	return w.k.GetStore(sdk.UnwrapSDKContext(ctx)).Has(types.WhitelistKey(poolID, addr))
}

// ============ Helpers ============

func (k *Keeper) currencyCoins(denom string, amount math.Int) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(denom, amount))
}

func now(ctx sdk.Context) int64 {
	return ctx.BlockTime().Unix()
}
