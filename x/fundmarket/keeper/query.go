package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// QueryServer defines the fundmarket QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// PoolInfo is a pool together with its NAV state and redeem slots
type PoolInfo struct {
	Pool           *types.Pool         `json:"pool"`
	LatestNav      types.NavCheckpoint `json:"latest_nav"`
	AllTimeHighNav string              `json:"all_time_high_nav"`
	Slots          []*types.RedeemSlot `json:"slots"`
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*PoolInfo, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}

	info := &PoolInfo{
		Pool:           pool,
		AllTimeHighNav: q.keeper.AllTimeHighRedeemNav(sdkCtx, poolID).String(),
		Slots:          q.keeper.GetRedeemSlotsByPool(sdkCtx, poolID),
	}
	if latest, err := q.keeper.LookupSubscribeNav(sdkCtx, poolID, now(sdkCtx)); err == nil {
		info.LatestNav = latest
	}
	return info, nil
}

// Pools returns all pools
func (q *QueryServer) Pools(ctx context.Context, offset, limit uint64) ([]*types.Pool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allPools := q.keeper.GetAllPools(sdkCtx)

	total := uint64(len(allPools))
	if offset >= total {
		return []*types.Pool{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}
	return allPools[offset:end], total, nil
}

// RedeemSlot returns a slot by ID
func (q *QueryServer) RedeemSlot(ctx context.Context, slotID string) (*types.RedeemSlot, error) {
	slot := q.keeper.GetRedeemSlot(sdk.UnwrapSDKContext(ctx), slotID)
	if slot == nil {
		return nil, types.ErrSlotNotFound
	}
	return slot, nil
}

// SubscribeNav returns the subscribe NAV in force at a timestamp
func (q *QueryServer) SubscribeNav(ctx context.Context, poolID string, at int64) (types.NavCheckpoint, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if q.keeper.GetPool(sdkCtx, poolID) == nil {
		return types.NavCheckpoint{}, types.ErrPoolNotFound
	}
	return q.keeper.LookupSubscribeNav(sdkCtx, poolID, at)
}

// Redemption returns the back-reference of a redemption position
func (q *QueryServer) Redemption(ctx context.Context, redemptionID uint64) (*types.RedemptionOrigin, error) {
	origin := q.keeper.GetRedemptionOrigin(sdk.UnwrapSDKContext(ctx), redemptionID)
	if origin == nil {
		return nil, types.ErrRedemptionNotFound
	}
	return origin, nil
}

// Params returns the module params
func (q *QueryServer) Params(ctx context.Context) types.Params {
	return q.keeper.GetParams(sdk.UnwrapSDKContext(ctx))
}
