package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.CarryRate = 100
		c.Whitelist = []string{s.alice, s.bob}
	})
	shareID := s.subscribe(pool, s.alice, usd(10_000)).PositionID
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, pool.Config.ValueDate+10, navOf("1.01")))
	s.afterValueDate(pool)

	first := s.requestRedeem(pool, s.alice, shareID, units(4_000))
	s.closeSlot(pool)
	_, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, first.SlotID, navOf("1.02"), usd(100))
	s.Require().NoError(err)
	_, err = s.keeper.Repay(s.ctx, s.issuer, first.SlotID, testCurrency, usd(1_000))
	s.Require().NoError(err)
	s.requestRedeem(pool, s.alice, shareID, units(1_000))

	exported := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Pools, 1)
	s.Require().Len(exported.Slots, 2)
	s.Require().Len(exported.Origins, 2)
	s.Require().Len(exported.Checkpoints, 1)
	s.Require().Len(exported.Checkpoints[0].Checkpoints, 2)

	bz, err := json.Marshal(exported)
	s.Require().NoError(err)

	var imported types.GenesisState
	s.Require().NoError(json.Unmarshal(bz, &imported))

	s.SetupTest()
	s.keeper.InitGenesis(s.ctx, imported)

	again, err := json.Marshal(s.keeper.ExportGenesis(s.ctx))
	s.Require().NoError(err)
	s.Require().JSONEq(string(bz), string(again))

	s.Require().ElementsMatch([]string{s.alice, s.bob}, s.keeper.GetWhitelist(s.ctx, pool.PoolID))
	s.requireIntEqual(navOf("1.02"), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))
	slot := s.keeper.GetRedeemSlot(s.ctx, first.SlotID)
	s.Require().True(slot.IsPriced())
	s.requireIntEqual(usd(1_000), slot.EscrowBalance)
}

func (s *KeeperTestSuite) TestGenesisValidate() {
	pool := types.Pool{PoolID: "p1", FundraisingAmount: math.ZeroInt()}

	tests := []struct {
		name string
		gs   types.GenesisState
		err  error
	}{
		{"default", *types.DefaultGenesis(), nil},
		{"duplicate pool", types.GenesisState{Pools: []types.Pool{pool, pool}}, types.ErrInvalidPoolConfig},
		{"orphan slot", types.GenesisState{Slots: []types.RedeemSlot{{SlotID: "s1", PoolID: "p2"}}}, types.ErrPoolNotFound},
		{"duplicate currency", types.GenesisState{Params: types.Params{AllowedCurrencies: []string{"a", "a"}}}, types.ErrInvalidParams},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := tt.gs.Validate()
			if tt.err == nil {
				s.Require().NoError(err)
				return
			}
			s.requireErr(err, tt.err)
		})
	}
}
