package keeper

import (
	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// fundedPool creates a pool, subscribes usd(10_000) for alice and moves past
// the value date. Returns the pool and alice's share id.
func (s *KeeperTestSuite) fundedPool(mutate func(*types.PoolConfig)) (*types.Pool, uint64) {
	pool := s.createPool(mutate)
	shareID := s.subscribe(pool, s.alice, usd(10_000)).PositionID
	s.afterValueDate(pool)
	return pool, shareID
}

func (s *KeeperTestSuite) TestRequestRedeem() {
	pool, shareID := s.fundedPool(nil)
	s.resetEvents()

	result := s.requestRedeem(pool, s.alice, shareID, units(4_000))
	s.Require().Equal(uint64(1), result.RedemptionID)
	s.Require().NotEmpty(result.SlotID)

	s.requireIntEqual(units(6_000), s.shareValue(shareID))
	s.requireIntEqual(units(4_000), s.redemptionValue(result.RedemptionID))

	slot := s.keeper.GetRedeemSlot(s.ctx, result.SlotID)
	s.Require().NotNil(slot)
	s.Require().Equal(uint64(1), slot.Sequence)
	s.Require().True(slot.IsOpen())
	s.requireIntEqual(units(4_000), slot.TotalValue)
	s.Require().Equal(result.SlotID, s.keeper.GetPool(s.ctx, pool.PoolID).CurrentRedeemSlotID)

	group, err := s.ledger.GroupOf(s.ctx, redemptionLedger, result.RedemptionID)
	s.Require().NoError(err)
	s.Require().Equal(result.SlotID, group)

	origin := s.keeper.GetRedemptionOrigin(s.ctx, result.RedemptionID)
	s.Require().NotNil(origin)
	s.Require().Equal(shareID, origin.OriginShareID)
	s.Require().Equal(pool.PoolID, origin.PoolID)

	events := s.events(types.EventTypeRedeemRequested)
	s.Require().Len(events, 1)
	s.Require().Equal(units(4_000).String(), attribute(events[0], types.AttributeKeyValue))

	// add to the same redemption
	again, err := s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, result.RedemptionID, units(1_000))
	s.Require().NoError(err)
	s.Require().Equal(result.RedemptionID, again.RedemptionID)
	s.requireIntEqual(units(5_000), s.redemptionValue(result.RedemptionID))
	s.requireIntEqual(units(5_000), s.keeper.GetRedeemSlot(s.ctx, result.SlotID).TotalValue)

	// draining the share removes the position
	s.requestRedeem(pool, s.alice, shareID, units(5_000))
	s.Require().Nil(s.ledger.GetPosition(s.ctx, shareLedger, shareID))
	s.requireIntEqual(units(10_000), s.keeper.GetRedeemSlot(s.ctx, result.SlotID).TotalValue)
}

func (s *KeeperTestSuite) TestRequestRedeemPreconditions() {
	pool, shareID := s.fundedPool(nil)
	bobShare := s.subscribe(pool, s.bob, usd(1_000)).PositionID
	bobRedemption := s.requestRedeem(pool, s.bob, bobShare, units(100)).RedemptionID

	_, err := s.keeper.RequestRedeem(s.ctx, s.alice, "missing", shareID, 0, units(1))
	s.requireErr(err, types.ErrPoolNotFound)

	_, err = s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, 0, math.ZeroInt())
	s.requireErr(err, types.ErrInvalidAmount)

	_, err = s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, 0, units(10_001))
	s.requireErr(err, types.ErrInsufficientValue)
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)

	_, err = s.keeper.RequestRedeem(s.ctx, s.bob, pool.PoolID, shareID, 0, units(1))
	s.requireErr(err, types.ErrNotPositionOwner)

	_, err = s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, bobRedemption, units(1))
	s.requireErr(err, types.ErrNotPositionOwner)

	// a redemption from a closed slot cannot be topped up
	aliceRedemption := s.requestRedeem(pool, s.alice, shareID, units(1_000)).RedemptionID
	s.closeSlot(pool)
	_, err = s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, aliceRedemption, units(1))
	s.requireErr(err, types.ErrSlotMismatch)

	s.requireIntEqual(units(9_000), s.shareValue(shareID))
}

func (s *KeeperTestSuite) TestRevokeRedeemRoundTrip() {
	pool, shareID := s.fundedPool(nil)
	result := s.requestRedeem(pool, s.alice, shareID, units(4_000))
	s.resetEvents()

	restored, err := s.keeper.RevokeRedeem(s.ctx, s.alice, pool.PoolID, result.RedemptionID)
	s.Require().NoError(err)
	s.Require().Equal(shareID, restored)
	s.requireIntEqual(units(10_000), s.shareValue(shareID))

	s.Require().Nil(s.ledger.GetPosition(s.ctx, redemptionLedger, result.RedemptionID))
	s.Require().Nil(s.keeper.GetRedemptionOrigin(s.ctx, result.RedemptionID))
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetRedeemSlot(s.ctx, result.SlotID).TotalValue)
	s.Require().Len(s.events(types.EventTypeRedeemRevoked), 1)
}

func (s *KeeperTestSuite) TestRevokeRedeemAfterShareDrained() {
	pool, shareID := s.fundedPool(nil)
	result := s.requestRedeem(pool, s.alice, shareID, units(10_000))
	s.Require().Nil(s.ledger.GetPosition(s.ctx, shareLedger, shareID))

	restored, err := s.keeper.RevokeRedeem(s.ctx, s.alice, pool.PoolID, result.RedemptionID)
	s.Require().NoError(err)
	s.Require().NotEqual(shareID, restored)
	s.requireIntEqual(units(10_000), s.shareValue(restored))

	group, err := s.ledger.GroupOf(s.ctx, shareLedger, restored)
	s.Require().NoError(err)
	s.Require().Equal(pool.ShareGroupingID, group)
}

func (s *KeeperTestSuite) TestRevokeRedeemRejected() {
	pool, shareID := s.fundedPool(nil)
	result := s.requestRedeem(pool, s.alice, shareID, units(4_000))

	_, err := s.keeper.RevokeRedeem(s.ctx, s.bob, pool.PoolID, result.RedemptionID)
	s.requireErr(err, types.ErrNotPositionOwner)

	_, err = s.keeper.RevokeRedeem(s.ctx, s.alice, pool.PoolID, 999)
	s.requireErr(err, types.ErrRedemptionNotFound)

	s.closeSlot(pool)
	_, err = s.keeper.RevokeRedeem(s.ctx, s.alice, pool.PoolID, result.RedemptionID)
	s.requireErr(err, types.ErrSlotClosed)
	s.Require().ErrorIs(err, types.ErrInvalidState)

	s.requireIntEqual(units(6_000), s.shareValue(shareID))
	s.requireIntEqual(units(4_000), s.redemptionValue(result.RedemptionID))
}

func (s *KeeperTestSuite) TestCloseRedeemSlot() {
	pool := s.createPool(nil)

	_, _, err := s.keeper.CloseCurrentRedeemSlot(s.ctx, s.alice, pool.PoolID)
	s.requireErr(err, types.ErrNotPoolManager)

	// closing with no request allocates and closes an empty slot
	s.resetEvents()
	closed, next, err := s.keeper.CloseCurrentRedeemSlot(s.ctx, s.issuer, pool.PoolID)
	s.Require().NoError(err)
	s.Require().NotEqual(closed, next)

	closedSlot := s.keeper.GetRedeemSlot(s.ctx, closed)
	s.Require().Equal(types.SlotStatusClosed, closedSlot.Status)
	s.Require().Equal(uint64(1), closedSlot.Sequence)
	s.requireIntEqual(math.ZeroInt(), closedSlot.TotalValue)

	nextSlot := s.keeper.GetRedeemSlot(s.ctx, next)
	s.Require().True(nextSlot.IsOpen())
	s.Require().Equal(uint64(2), nextSlot.Sequence)
	s.Require().Equal(next, s.keeper.GetPool(s.ctx, pool.PoolID).CurrentRedeemSlotID)

	events := s.events(types.EventTypeRedeemSlotClosed)
	s.Require().Len(events, 1)
	s.Require().Equal(closed, attribute(events[0], types.AttributeKeySlotID))

	// requests after a close land in the next slot
	shareID := s.subscribe(pool, s.alice, usd(100)).PositionID
	s.Require().Equal(next, s.requestRedeem(pool, s.alice, shareID, units(50)).SlotID)

	s.closeSlot(pool)
	s.closeSlot(pool)

	slots := s.keeper.GetRedeemSlotsByPool(s.ctx, pool.PoolID)
	s.Require().Len(slots, 4)
	for i, slot := range slots {
		s.Require().Equal(uint64(i+1), slot.Sequence)
	}
	s.Require().Equal(slots[1].SlotID, s.keeper.GetRedeemSlotBySequence(s.ctx, pool.PoolID, 2).SlotID)
}
