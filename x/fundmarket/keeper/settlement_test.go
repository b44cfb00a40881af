package keeper

import (
	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

// closedSlot funds a pool with the given carry rate, redeems all of alice's
// value and closes the slot. Returns the pool, redemption id and slot id.
func (s *KeeperTestSuite) closedSlot(carryRate uint32) (*types.Pool, uint64, string) {
	pool, shareID := s.fundedPool(func(c *types.PoolConfig) { c.CarryRate = carryRate })
	result := s.requestRedeem(pool, s.alice, shareID, units(10_000))
	s.Require().Equal(result.SlotID, s.closeSlot(pool))
	return pool, result.RedemptionID, result.SlotID
}

func (s *KeeperTestSuite) TestSetRedeemNavCarry() {
	tests := []struct {
		name      string
		carryRate uint32
		nav       string
		carry     math.Int
		perUnit   math.Int
		ath       string
	}{
		{"no carry rate", 0, "1.05", math.ZeroInt(), navOf("1.05"), "1.05"},
		{"gain over all-time-high", 100, "1.02", math.NewInt(2_000_000), math.NewInt(1_019_800), "1.02"},
		{"at all-time-high", 100, "1", math.ZeroInt(), navOf("1"), "1"},
		{"below all-time-high", 100, "0.98", math.ZeroInt(), navOf("0.98"), "1"},
		{"full carry", types.MaxCarryRate, "1.1", math.NewInt(1_000_000_000), navOf("1"), "1.1"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			pool, _, slotID := s.closedSlot(tt.carryRate)
			s.resetEvents()

			result, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf(tt.nav), math.ZeroInt())
			s.Require().NoError(err)
			s.requireIntEqual(tt.carry, result.CarryAmount)
			s.requireIntEqual(tt.perUnit, result.PerUnitNav)
			s.requireIntEqual(navOf(tt.ath), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))

			slot := s.keeper.GetRedeemSlot(s.ctx, slotID)
			s.Require().True(slot.IsPriced())
			s.requireIntEqual(tt.perUnit, slot.RedeemNav)
			s.requireIntEqual(tt.carry, slot.CarryAmount)

			s.Require().Len(s.events(types.EventTypeRedeemNavSet), 1)
			if tt.carry.IsPositive() {
				s.Require().Len(s.events(types.EventTypeCarrySettled), 1)
				s.Require().Less(s.eventIndex(types.EventTypeCarrySettled), s.eventIndex(types.EventTypeRedeemNavSet))
			} else {
				s.Require().Empty(s.events(types.EventTypeCarrySettled))
			}
		})
	}
}

func (s *KeeperTestSuite) TestSecondRoundCarry() {
	pool := s.createPool(func(c *types.PoolConfig) { c.CarryRate = 100 })
	aliceShare := s.subscribe(pool, s.alice, usd(10_000)).PositionID
	bobShare := s.subscribe(pool, s.bob, usd(90_000)).PositionID
	s.afterValueDate(pool)

	first := s.requestRedeem(pool, s.alice, aliceShare, units(10_000)).SlotID
	s.closeSlot(pool)
	result, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, first, navOf("1.02"), math.ZeroInt())
	s.Require().NoError(err)
	s.requireIntEqual(math.NewInt(1_019_800), result.PerUnitNav)

	second := s.requestRedeem(pool, s.bob, bobShare, units(90_000)).SlotID
	s.closeSlot(pool)
	result, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, second, navOf("1.05"), math.ZeroInt())
	s.Require().NoError(err)
	s.requireIntEqual(math.NewInt(27_000_000), result.CarryAmount)
	s.requireIntEqual(math.NewInt(1_049_700), result.PerUnitNav)
	s.requireIntEqual(navOf("1.05"), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))
}

func (s *KeeperTestSuite) TestSetRedeemNavPreconditions() {
	pool := s.createPool(func(c *types.PoolConfig) { c.CarryRate = 100 })
	other := s.createPool(func(c *types.PoolConfig) { c.CarryRate = 200 })
	shareID := s.subscribe(pool, s.alice, usd(10_000)).PositionID
	otherShare := s.subscribe(other, s.alice, usd(10_000)).PositionID
	s.afterValueDate(pool)

	slotID := s.requestRedeem(pool, s.alice, shareID, units(10_000)).SlotID
	s.closeSlot(pool)
	otherSlot := s.requestRedeem(other, s.alice, otherShare, units(10_000)).SlotID
	s.closeSlot(other)

	_, err := s.keeper.SetRedeemNav(s.ctx, s.issuer, pool.PoolID, slotID, navOf("1.02"), math.ZeroInt())
	s.requireErr(err, types.ErrNotNavManager)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, "missing", navOf("1.02"), math.ZeroInt())
	s.requireErr(err, types.ErrSlotNotFound)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, otherSlot, navOf("1.02"), math.ZeroInt())
	s.requireErr(err, types.ErrSlotNotFound)

	open := s.keeper.GetPool(s.ctx, pool.PoolID).CurrentRedeemSlotID
	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, open, navOf("1.02"), math.ZeroInt())
	s.requireErr(err, types.ErrSlotNotClosed)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, math.ZeroInt(), math.ZeroInt())
	s.requireErr(err, types.ErrInvalidNav)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1.02"), math.ZeroInt())
	s.Require().NoError(err)

	// pricing is final
	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1.5"), math.ZeroInt())
	s.requireErr(err, types.ErrRedeemNavAlreadySet)
	s.requireIntEqual(math.NewInt(1_019_800), s.keeper.GetRedeemSlot(s.ctx, slotID).RedeemNav)
	s.requireIntEqual(navOf("1.02"), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))
}

func (s *KeeperTestSuite) TestAllTimeHighIsMonotonic() {
	pool := s.createPool(func(c *types.PoolConfig) { c.CarryRate = 100 })

	steps := []struct {
		nav string
		ath string
	}{
		{"1.02", "1.02"},
		{"0.97", "1.02"},
		{"1.01", "1.02"},
		{"1.10", "1.10"},
		{"1.05", "1.10"},
	}
	for _, step := range steps {
		slotID := s.closeSlot(pool)
		result, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf(step.nav), math.ZeroInt())
		s.Require().NoError(err)
		// empty slots carry nothing
		s.requireIntEqual(math.ZeroInt(), result.CarryAmount)
		s.requireIntEqual(navOf(step.ath), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID), step.nav)
	}
}

func (s *KeeperTestSuite) TestAllTimeHighCorruptEntryPanics() {
	pool := s.createPool(nil)
	s.requireIntEqual(types.InitialNav(), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))

	s.keeper.GetStore(s.ctx).Set(types.AllTimeHighNavKey(pool.PoolID), []byte("not-a-nav"))
	s.Require().Panics(func() {
		s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID)
	})
}

func (s *KeeperTestSuite) TestRepay() {
	pool, _, slotID := s.closedSlot(0)

	_, err := s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, usd(100))
	s.requireErr(err, types.ErrRedeemNavNotSet)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1.05"), math.ZeroInt())
	s.Require().NoError(err)

	_, err = s.keeper.Repay(s.ctx, s.issuer, "missing", testCurrency, usd(100))
	s.requireErr(err, types.ErrSlotNotFound)

	_, err = s.keeper.Repay(s.ctx, s.issuer, slotID, "uatom", usd(100))
	s.requireErr(err, types.ErrCurrencyMismatch)

	_, err = s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, math.ZeroInt())
	s.requireErr(err, types.ErrInvalidAmount)

	_, err = s.keeper.Repay(s.ctx, testAddr("carol"), slotID, testCurrency, usd(100))
	s.requireErr(err, types.ErrCurrencyTransfer)
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetRedeemSlot(s.ctx, slotID).EscrowBalance)

	s.resetEvents()
	escrow, err := s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, usd(10_500))
	s.Require().NoError(err)
	s.requireIntEqual(usd(10_500), escrow)
	s.requireIntEqual(usd(10_500), s.moduleBalance())
	s.requireIntEqual(usd(989_500), s.balance(s.issuer))
	s.Require().Len(s.events(types.EventTypeRepaid), 1)

	// overpayment stays in escrow
	escrow, err = s.keeper.Repay(s.ctx, s.bob, slotID, testCurrency, usd(100))
	s.Require().NoError(err)
	s.requireIntEqual(usd(10_600), escrow)
	s.requireIntEqual(usd(10_600), s.keeper.GetRedeemSlot(s.ctx, slotID).EscrowBalance)
}

func (s *KeeperTestSuite) TestClaim() {
	pool, redemptionID, slotID := s.closedSlot(0)
	aliceBefore := s.balance(s.alice)

	_, err := s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(1_000))
	s.requireErr(err, types.ErrRedeemNavNotSet)

	_, err = s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1.05"), math.ZeroInt())
	s.Require().NoError(err)

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(10_000))
	s.requireErr(err, types.ErrInsufficientRepayment)
	s.requireIntEqual(units(10_000), s.redemptionValue(redemptionID))

	_, err = s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, usd(5_000))
	s.Require().NoError(err)

	// 5,000 units owe 5,250 against 5,000 in escrow
	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(5_000))
	s.requireErr(err, types.ErrInsufficientRepayment)

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(10_001))
	s.requireErr(err, types.ErrInsufficientValue)

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, "uatom", units(1_000))
	s.requireErr(err, types.ErrCurrencyMismatch)

	_, err = s.keeper.Claim(s.ctx, s.bob, s.bob, redemptionID, testCurrency, units(1_000))
	s.requireErr(err, types.ErrNotPositionOwner)

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, math.ZeroInt())
	s.requireErr(err, types.ErrInvalidAmount)

	// partial claim paid to another recipient
	bobBefore := s.balance(s.bob)
	s.resetEvents()
	owed, err := s.keeper.Claim(s.ctx, s.alice, s.bob, redemptionID, testCurrency, units(4_000))
	s.Require().NoError(err)
	s.requireIntEqual(usd(4_200), owed)
	s.requireIntEqual(bobBefore.Add(usd(4_200)), s.balance(s.bob))
	s.requireIntEqual(usd(800), s.keeper.GetRedeemSlot(s.ctx, slotID).EscrowBalance)
	s.requireIntEqual(units(6_000), s.redemptionValue(redemptionID))
	s.Require().NotNil(s.keeper.GetRedemptionOrigin(s.ctx, redemptionID))
	events := s.events(types.EventTypeClaimed)
	s.Require().Len(events, 1)
	s.Require().Equal(usd(4_200).String(), attribute(events[0], types.AttributeKeyCurrencyAmount))

	_, err = s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, usd(5_500))
	s.Require().NoError(err)

	owed, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(6_000))
	s.Require().NoError(err)
	s.requireIntEqual(usd(6_300), owed)
	s.requireIntEqual(aliceBefore.Add(usd(6_300)), s.balance(s.alice))
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetRedeemSlot(s.ctx, slotID).EscrowBalance)
	s.requireIntEqual(math.ZeroInt(), s.moduleBalance())

	s.Require().Nil(s.ledger.GetPosition(s.ctx, redemptionLedger, redemptionID))
	s.Require().Nil(s.keeper.GetRedemptionOrigin(s.ctx, redemptionID))

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemptionID, testCurrency, units(1))
	s.requireErr(err, types.ErrRedemptionNotFound)
}

func (s *KeeperTestSuite) TestClaimFailureRollsBack() {
	pool, redemptionID, slotID := s.closedSlot(0)
	_, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1"), math.ZeroInt())
	s.Require().NoError(err)
	_, err = s.keeper.Repay(s.ctx, s.issuer, slotID, testCurrency, usd(10_000))
	s.Require().NoError(err)
	s.resetEvents()

	// the payout step rejects the recipient after value was burned in the cache
	_, err = s.keeper.Claim(s.ctx, s.alice, "not-an-address", redemptionID, testCurrency, units(1_000))
	s.requireErr(err, types.ErrInvalidAddress)

	s.requireIntEqual(units(10_000), s.redemptionValue(redemptionID))
	s.requireIntEqual(usd(10_000), s.keeper.GetRedeemSlot(s.ctx, slotID).EscrowBalance)
	s.requireIntEqual(usd(10_000), s.moduleBalance())
	s.Require().Empty(s.ctx.EventManager().Events())
}

// A subscription of 10,000 at NAV 1.0 is fully redeemed and priced at 1.05.
// The issuer declares 10,050 repaid at pricing; the claim owes 10,500 and only
// succeeds once escrow covers it.
func (s *KeeperTestSuite) TestEndToEndSettlement() {
	pool := s.createPool(nil)
	result := s.subscribe(pool, s.alice, usd(10_000))
	s.requireIntEqual(units(10_000), result.Value)
	s.requireIntEqual(usd(10_000), s.balance(s.vault))

	s.afterValueDate(pool)
	redemption := s.requestRedeem(pool, s.alice, result.PositionID, units(10_000))
	s.Require().Equal(redemption.SlotID, s.closeSlot(pool))

	carry, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, redemption.SlotID, navOf("1.05"), usd(10_050))
	s.Require().NoError(err)
	s.requireIntEqual(math.ZeroInt(), carry.CarryAmount)
	s.requireIntEqual(navOf("1.05"), carry.PerUnitNav)
	s.requireIntEqual(usd(10_050), s.keeper.GetRedeemSlot(s.ctx, redemption.SlotID).RepaidBalanceAtSet)

	_, err = s.keeper.Repay(s.ctx, s.issuer, redemption.SlotID, testCurrency, usd(10_050))
	s.Require().NoError(err)

	_, err = s.keeper.Claim(s.ctx, s.alice, s.alice, redemption.RedemptionID, testCurrency, units(10_000))
	s.requireErr(err, types.ErrInsufficientRepayment)

	_, err = s.keeper.Repay(s.ctx, s.issuer, redemption.SlotID, testCurrency, usd(450))
	s.Require().NoError(err)

	before := s.balance(s.alice)
	owed, err := s.keeper.Claim(s.ctx, s.alice, s.alice, redemption.RedemptionID, testCurrency, units(10_000))
	s.Require().NoError(err)
	s.requireIntEqual(usd(10_500), owed)
	s.requireIntEqual(before.Add(usd(10_500)), s.balance(s.alice))
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetRedeemSlot(s.ctx, redemption.SlotID).EscrowBalance)
}

func (s *KeeperTestSuite) TestValueConservation() {
	pool := s.createPool(nil)
	aliceShare := s.subscribe(pool, s.alice, usd(10_000)).PositionID
	bobShare := s.subscribe(pool, s.bob, usd(3_000)).PositionID
	s.afterValueDate(pool)

	r1 := s.requestRedeem(pool, s.alice, aliceShare, units(2_500))
	s.requestRedeem(pool, s.bob, bobShare, units(3_000))
	s.closeSlot(pool)
	r3 := s.requestRedeem(pool, s.alice, aliceShare, units(1_500))
	_, err := s.keeper.RevokeRedeem(s.ctx, s.alice, pool.PoolID, r3.RedemptionID)
	s.Require().NoError(err)
	s.requestRedeem(pool, s.alice, aliceShare, units(500))

	total := math.ZeroInt()
	perSlot := make(map[string]math.Int)
	for _, position := range s.ledger.GetAllPositions(s.ctx) {
		total = total.Add(position.Value)
		if position.Ledger == redemptionLedger {
			sum, ok := perSlot[position.GroupingID]
			if !ok {
				sum = math.ZeroInt()
			}
			perSlot[position.GroupingID] = sum.Add(position.Value)
		}
	}
	s.requireIntEqual(units(13_000), total)

	for _, slot := range s.keeper.GetRedeemSlotsByPool(s.ctx, pool.PoolID) {
		expected, ok := perSlot[slot.SlotID]
		if !ok {
			expected = math.ZeroInt()
		}
		s.requireIntEqual(expected, slot.TotalValue, slot.SlotID)
	}
	s.requireIntEqual(units(5_500), s.keeper.GetRedeemSlot(s.ctx, r1.SlotID).TotalValue)
}
