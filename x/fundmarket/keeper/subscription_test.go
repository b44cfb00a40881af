package keeper

import (
	"sync"

	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

func (s *KeeperTestSuite) TestSubscribe() {
	pool := s.createPool(nil)
	s.resetEvents()

	result := s.subscribe(pool, s.alice, usd(10_000))
	s.Require().Equal(uint64(1), result.PositionID)
	s.requireIntEqual(units(10_000), result.Value)
	s.requireIntEqual(types.InitialNav(), result.Nav)

	s.requireIntEqual(usd(990_000), s.balance(s.alice))
	s.requireIntEqual(usd(10_000), s.balance(s.vault))
	s.requireIntEqual(usd(10_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
	s.requireIntEqual(units(10_000), s.shareValue(result.PositionID))

	owner, err := s.ledger.OwnerOf(s.ctx, shareLedger, result.PositionID)
	s.Require().NoError(err)
	s.Require().Equal(s.alice, owner)

	events := s.events(types.EventTypeSubscribed)
	s.Require().Len(events, 1)
	s.Require().Equal(s.alice, attribute(events[0], types.AttributeKeyBuyer))
	s.Require().Equal("1", attribute(events[0], types.AttributeKeyPositionID))
	s.Require().Equal(usd(10_000).String(), attribute(events[0], types.AttributeKeyPayment))

	// top up the same position
	topUp, err := s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(5_000), result.PositionID, s.now()+60)
	s.Require().NoError(err)
	s.Require().Equal(result.PositionID, topUp.PositionID)
	s.requireIntEqual(units(15_000), s.shareValue(result.PositionID))
	s.requireIntEqual(usd(15_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
}

func (s *KeeperTestSuite) TestSubscribePreconditions() {
	pool := s.createPool(nil)
	other := s.createPool(func(c *types.PoolConfig) { c.CarryRate = 100 })
	alicePosition := s.subscribe(pool, s.alice, usd(100)).PositionID
	otherPosition := s.subscribe(other, s.alice, usd(100)).PositionID
	limit := pool.Config.SubscribeLimit

	tests := []struct {
		name       string
		buyer      string
		poolID     string
		amount     math.Int
		positionID uint64
		deadline   int64
		err        error
	}{
		{"deadline passed", s.alice, pool.PoolID, usd(100), 0, genesisTime - 1, types.ErrExpired},
		{"unknown pool", s.alice, "missing", usd(100), 0, 0, types.ErrPoolNotFound},
		{"zero amount", s.alice, pool.PoolID, math.ZeroInt(), 0, 0, types.ErrInvalidAmount},
		{"position of another pool", s.alice, pool.PoolID, usd(100), otherPosition, 0, types.ErrSlotMismatch},
		{"unknown position", s.alice, pool.PoolID, usd(100), 999, 0, types.ErrNotFound},
		{"below min", s.alice, pool.PoolID, limit.SubscribeMin.SubRaw(1), 0, 0, types.ErrBelowSubscribeMin},
		{"above max", s.alice, pool.PoolID, limit.SubscribeMax.AddRaw(1), 0, 0, types.ErrAboveSubscribeMax},
		{"unfunded buyer", testAddr("carol"), pool.PoolID, usd(100), 0, 0, types.ErrCurrencyTransfer},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			deadline := tt.deadline
			if deadline == 0 {
				deadline = s.now() + 60
			}
			_, err := s.keeper.Subscribe(s.ctx, tt.buyer, tt.poolID, tt.amount, tt.positionID, deadline)
			s.requireErr(err, tt.err)
		})
	}

	// nothing above moved funds or value
	s.requireIntEqual(usd(100), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
	s.requireIntEqual(usd(200), s.balance(s.vault))
	s.requireIntEqual(units(100), s.shareValue(alicePosition))
}

func (s *KeeperTestSuite) TestSubscribeIntoPositionOfAnotherHolder() {
	pool := s.createPool(nil)
	alicePosition := s.subscribe(pool, s.alice, usd(100)).PositionID

	result, err := s.keeper.Subscribe(s.ctx, s.bob, pool.PoolID, usd(50), alicePosition, s.now()+60)
	s.Require().NoError(err)
	s.Require().Equal(alicePosition, result.PositionID)

	s.requireIntEqual(units(150), s.shareValue(alicePosition))
	owner, err := s.ledger.OwnerOf(s.ctx, shareLedger, alicePosition)
	s.Require().NoError(err)
	s.Require().Equal(s.alice, owner)
	s.requireIntEqual(usd(999_950), s.balance(s.bob))
	s.requireIntEqual(usd(150), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
}

func (s *KeeperTestSuite) TestSubscribeUnfundedIsInsufficientFunds() {
	pool := s.createPool(nil)
	_, err := s.keeper.Subscribe(s.ctx, testAddr("carol"), pool.PoolID, usd(100), 0, s.now()+60)
	s.Require().ErrorIs(err, types.ErrInsufficientFunds)
}

func (s *KeeperTestSuite) TestSubscribeFundraisingWindow() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.SubscribeLimit.FundraisingStart = genesisTime + 100
	})
	limit := pool.Config.SubscribeLimit

	_, err := s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(100), 0, s.now()+60)
	s.requireErr(err, types.ErrFundraisingNotStart)

	s.setTime(limit.FundraisingStart)
	s.subscribe(pool, s.alice, usd(100))

	s.setTime(limit.FundraisingEnd)
	s.subscribe(pool, s.alice, usd(100))

	s.setTime(limit.FundraisingEnd + 1)
	_, err = s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(100), 0, s.now()+60)
	s.requireErr(err, types.ErrFundraisingEnded)
}

func (s *KeeperTestSuite) TestHardCapBoundary() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.SubscribeLimit.HardCap = usd(1_000)
		c.SubscribeLimit.SubscribeMin = math.OneInt()
		c.SubscribeLimit.SubscribeMax = usd(1_000)
	})

	s.subscribe(pool, s.alice, usd(400))
	s.subscribe(pool, s.bob, usd(600))
	s.requireIntEqual(usd(1_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)

	_, err := s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, math.OneInt(), 0, s.now()+60)
	s.requireErr(err, types.ErrHardCapReached)

	// from the value date on the cap no longer applies
	s.setTime(pool.Config.ValueDate)
	s.subscribe(pool, s.alice, usd(500))
	s.requireIntEqual(usd(1_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
	s.requireIntEqual(usd(1_500), s.balance(s.vault))
}

func (s *KeeperTestSuite) TestConcurrentSubscribeRespectsHardCap() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.SubscribeLimit.HardCap = usd(1_000)
		c.SubscribeLimit.SubscribeMin = math.OneInt()
		c.SubscribeLimit.SubscribeMax = usd(1_000)
	})

	const workers = 20
	errs := make([]error, workers)
	deadline := s.now() + 60

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buyer := s.alice
			if i%2 == 1 {
				buyer = s.bob
			}
			_, errs[i] = s.keeper.Subscribe(s.ctx, buyer, pool.PoolID, usd(100), 0, deadline)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.requireErr(err, types.ErrHardCapReached)
	}
	s.Require().Equal(10, succeeded)
	s.requireIntEqual(usd(1_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
	s.requireIntEqual(usd(1_000), s.balance(s.vault))
}

func (s *KeeperTestSuite) TestConcurrentSubscribeAcrossPools() {
	pools := []*types.Pool{s.createPool(nil), s.createPool(nil)}
	s.Require().Equal(pools[0].Config.ShareLedger, pools[1].Config.ShareLedger)

	const workers = 20
	results := make([]*SubscriptionResult, workers)
	errs := make([]error, workers)
	deadline := s.now() + 60

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buyer := s.alice
			if i%2 == 1 {
				buyer = s.bob
			}
			results[i], errs[i] = s.keeper.Subscribe(s.ctx, buyer, pools[i%2].PoolID, usd(100), 0, deadline)
		}(i)
	}
	wg.Wait()

	positions := make(map[uint64]bool, workers)
	for i, err := range errs {
		s.Require().NoError(err)
		s.Require().False(positions[results[i].PositionID], "position %d issued twice", results[i].PositionID)
		positions[results[i].PositionID] = true
		s.requireIntEqual(units(100), s.shareValue(results[i].PositionID))
	}
	s.Require().Len(positions, workers)

	for _, pool := range pools {
		s.requireIntEqual(usd(1_000), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
	}
	s.requireIntEqual(usd(2_000), s.balance(s.vault))
}
