package keeper

import (
	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

func (s *KeeperTestSuite) TestMsgServerLifecycle() {
	srv := NewMsgServerImpl(s.keeper)
	query := NewQueryServerImpl(s.keeper)

	created, err := srv.CreatePool(s.ctx, &types.MsgCreatePool{Creator: s.issuer, Config: s.defaultConfig()})
	s.Require().NoError(err)
	s.Require().NotEmpty(created.PoolID)

	subscribed, err := srv.Subscribe(s.ctx, &types.MsgSubscribe{
		Buyer:    s.alice,
		PoolID:   created.PoolID,
		Amount:   usd(10_000).String(),
		Deadline: s.now() + 60,
	})
	s.Require().NoError(err)
	s.Require().Equal(units(10_000).String(), subscribed.Value)
	s.Require().Equal("1000000", subscribed.Nav)

	_, err = srv.Subscribe(s.ctx, &types.MsgSubscribe{
		Buyer:    s.alice,
		PoolID:   created.PoolID,
		Amount:   "ten",
		Deadline: s.now() + 60,
	})
	s.requireErr(err, types.ErrInvalidAmount)

	s.setTime(genesisTime + valueDateOffset + 1)
	requested, err := srv.RequestRedeem(s.ctx, &types.MsgRequestRedeem{
		Owner:   s.alice,
		PoolID:  created.PoolID,
		ShareID: subscribed.PositionID,
		Value:   units(10_000).String(),
	})
	s.Require().NoError(err)

	closed, err := srv.CloseRedeemSlot(s.ctx, &types.MsgCloseRedeemSlot{Manager: s.issuer, PoolID: created.PoolID})
	s.Require().NoError(err)
	s.Require().Equal(requested.SlotID, closed.ClosedSlotID)

	priced, err := srv.SetRedeemNav(s.ctx, &types.MsgSetRedeemNav{
		Manager: s.redeemNav,
		PoolID:  created.PoolID,
		SlotID:  closed.ClosedSlotID,
		Nav:     "1050000",
	})
	s.Require().NoError(err)
	s.Require().Equal("1050000", priced.PerUnitNav)
	s.Require().Equal("0", priced.CarryAmount)
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetRedeemSlot(s.ctx, closed.ClosedSlotID).RepaidBalanceAtSet)

	repaid, err := srv.Repay(s.ctx, &types.MsgRepay{
		Payer:    s.issuer,
		SlotID:   closed.ClosedSlotID,
		Currency: testCurrency,
		Amount:   usd(10_500).String(),
	})
	s.Require().NoError(err)
	s.Require().Equal(usd(10_500).String(), repaid.EscrowBalance)

	before := s.balance(s.alice)
	claimed, err := srv.Claim(s.ctx, &types.MsgClaim{
		Owner:        s.alice,
		RedemptionID: requested.RedemptionID,
		Currency:     testCurrency,
		Value:        units(10_000).String(),
	})
	s.Require().NoError(err)
	s.Require().Equal(usd(10_500).String(), claimed.CurrencyAmount)
	s.requireIntEqual(before.Add(usd(10_500)), s.balance(s.alice))

	info, err := query.Pool(s.ctx, created.PoolID)
	s.Require().NoError(err)
	s.Require().Equal("1050000", info.AllTimeHighNav)
	s.Require().Len(info.Slots, 2)
	s.requireIntEqual(types.InitialNav(), info.LatestNav.Nav)

	pools, total, err := query.Pools(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), total)
	s.Require().Len(pools, 1)

	pools, _, err = query.Pools(s.ctx, 5, 10)
	s.Require().NoError(err)
	s.Require().Empty(pools)

	slot, err := query.RedeemSlot(s.ctx, closed.ClosedSlotID)
	s.Require().NoError(err)
	s.Require().True(slot.IsPriced())

	_, err = query.Redemption(s.ctx, requested.RedemptionID)
	s.requireErr(err, types.ErrRedemptionNotFound)

	_, err = query.Pool(s.ctx, "missing")
	s.requireErr(err, types.ErrPoolNotFound)

	nav, err := query.SubscribeNav(s.ctx, created.PoolID, genesisTime)
	s.Require().NoError(err)
	s.requireIntEqual(types.InitialNav(), nav.Nav)

	s.Require().Equal([]string{testCurrency}, query.Params(s.ctx).AllowedCurrencies)
}

func (s *KeeperTestSuite) TestUpdateParamsAuthority() {
	srv := NewMsgServerImpl(s.keeper)

	_, err := srv.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: s.alice, Params: types.DefaultParams()})
	s.requireErr(err, types.ErrInvalidAuthority)

	_, err = srv.UpdateParams(s.ctx, &types.MsgUpdateParams{
		Authority: s.authority,
		Params:    types.Params{AllowedCurrencies: []string{"a", "a"}},
	})
	s.requireErr(err, types.ErrInvalidParams)

	_, err = srv.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: s.authority, Params: types.DefaultParams()})
	s.Require().NoError(err)
	s.Require().Empty(s.keeper.GetParams(s.ctx).AllowedCurrencies)

	_, err = s.keeper.CreatePool(s.ctx, s.issuer, s.defaultConfig())
	s.requireErr(err, types.ErrCurrencyNotAllowed)
}
