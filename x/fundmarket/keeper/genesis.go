package keeper

import (
	"sort"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// InitGenesis loads the market state
func (k *Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) {
	k.SetParams(ctx, gs.Params)

	for i := range gs.Pools {
		pool := gs.Pools[i]
		k.SetPool(ctx, &pool)
		k.SetWhitelist(ctx, pool.PoolID, pool.Config.Whitelist)
	}
	for _, pc := range gs.Checkpoints {
		for _, checkpoint := range pc.Checkpoints {
			k.setNavCheckpoint(ctx, pc.PoolID, checkpoint)
		}
		if ath, ok := math.NewIntFromString(pc.AllTimeHighNav); ok {
			k.setAllTimeHighNav(ctx, pc.PoolID, ath)
		}
	}
	for i := range gs.Slots {
		k.SetRedeemSlot(ctx, &gs.Slots[i])
	}
	for i := range gs.Origins {
		k.SetRedemptionOrigin(ctx, &gs.Origins[i])
	}
}

// ExportGenesis dumps the market state
func (k *Keeper) ExportGenesis(ctx sdk.Context) *types.GenesisState {
	gs := types.DefaultGenesis()
	gs.Params = k.GetParams(ctx)

	for _, pool := range k.GetAllPools(ctx) {
		gs.Pools = append(gs.Pools, *pool)
		gs.Checkpoints = append(gs.Checkpoints, types.PoolCheckpoints{
			PoolID:         pool.PoolID,
			AllTimeHighNav: k.AllTimeHighRedeemNav(ctx, pool.PoolID).String(),
			Checkpoints:    k.GetNavCheckpoints(ctx, pool.PoolID),
		})
	}

	slots := k.GetAllRedeemSlots(ctx)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].PoolID != slots[j].PoolID {
			return slots[i].PoolID < slots[j].PoolID
		}
		return slots[i].Sequence < slots[j].Sequence
	})
	for _, slot := range slots {
		gs.Slots = append(gs.Slots, *slot)
	}
	gs.Origins = k.GetAllRedemptionOrigins(ctx)
	return gs
}
