package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

func (s *KeeperTestSuite) TestCreatePool() {
	pool := s.createPool(nil)

	s.Require().Equal(types.DerivePoolID(shareLedger, pool.ShareGroupingID), pool.PoolID)
	s.Require().True(pool.Permissionless)
	s.Require().Equal(s.issuer, pool.PoolManager)
	s.Require().Equal(genesisTime, pool.CreateTime)
	s.requireIntEqual(math.ZeroInt(), pool.FundraisingAmount)
	s.Require().Empty(pool.CurrentRedeemSlotID)

	stored := s.keeper.GetPool(s.ctx, pool.PoolID)
	s.Require().NotNil(stored)
	s.Require().Equal(pool.ShareGroupingID, stored.ShareGroupingID)

	grouping := s.ledger.GetGrouping(s.ctx, shareLedger, pool.ShareGroupingID)
	s.Require().NotNil(grouping)
	s.Require().Equal(s.issuer, grouping.Owner)

	checkpoints := s.keeper.GetNavCheckpoints(s.ctx, pool.PoolID)
	s.Require().Len(checkpoints, 1)
	s.Require().Equal(pool.Config.ValueDate, checkpoints[0].Timestamp)
	s.requireIntEqual(types.InitialNav(), checkpoints[0].Nav)
	s.requireIntEqual(types.InitialNav(), s.keeper.AllTimeHighRedeemNav(s.ctx, pool.PoolID))

	s.Require().Len(s.events(types.EventTypePoolCreated), 1)
	s.Require().Len(s.events(types.EventTypeSubscribeNavSet), 1)
	s.Require().Less(s.eventIndex(types.EventTypePoolCreated), s.eventIndex(types.EventTypeSubscribeNavSet))
	s.Require().Equal(pool.PoolID, attribute(s.events(types.EventTypePoolCreated)[0], types.AttributeKeyPoolID))
}

func (s *KeeperTestSuite) TestCreatePoolDuplicate() {
	s.createPool(nil)

	_, err := s.keeper.CreatePool(s.ctx, s.issuer, s.defaultConfig())
	s.requireErr(err, types.ErrPoolAlreadyExists)
	s.Require().Len(s.keeper.GetAllPools(s.ctx), 1)

	// same config one second later derives a different pool
	s.setTime(genesisTime + 1)
	s.createPool(nil)
	s.Require().Len(s.keeper.GetAllPools(s.ctx), 2)
}

func (s *KeeperTestSuite) TestCreatePoolValidationOrder() {
	vd := genesisTime + valueDateOffset
	end := genesisTime + 2*valueDateOffset

	tests := []struct {
		name   string
		caller string
		mutate func(*types.PoolConfig)
		err    error
	}{
		{
			name: "currency not allowed wins over carry rate",
			mutate: func(c *types.PoolConfig) {
				c.Currency = "uatom"
				c.CarryRate = types.MaxCarryRate + 1
			},
			err: types.ErrCurrencyNotAllowed,
		},
		{
			name:   "share ledger not registered",
			mutate: func(c *types.PoolConfig) { c.ShareLedger = "unknown" },
			err:    types.ErrShareLedgerNotAllowed,
		},
		{
			name:   "issuer does not manage share ledger",
			caller: testAddr("stranger"),
			err:    types.ErrInvalidShareManager,
		},
		{
			name:   "redemption ledger not registered",
			mutate: func(c *types.PoolConfig) { c.RedemptionLedger = "unknown" },
			err:    types.ErrRedeemLedgerNotAllowed,
		},
		{
			name: "min above max wins over missing vault",
			mutate: func(c *types.PoolConfig) {
				c.SubscribeLimit.SubscribeMin = usd(10)
				c.SubscribeLimit.SubscribeMax = usd(5)
				c.Vault = ""
			},
			err: types.ErrInvalidMinMax,
		},
		{
			name:   "value date before fundraising start",
			mutate: func(c *types.PoolConfig) { c.SubscribeLimit.FundraisingStart = vd + 10 },
			err:    types.ErrInvalidValueDate,
		},
		{
			name: "start after end wins over maturity",
			mutate: func(c *types.PoolConfig) {
				c.SubscribeLimit.FundraisingStart = end + 1
				c.ValueDate = end + 1
			},
			err: types.ErrInvalidFundraisingWindow,
		},
		{
			name: "fundraising already ended",
			mutate: func(c *types.PoolConfig) {
				c.SubscribeLimit.FundraisingStart = genesisTime - 200
				c.SubscribeLimit.FundraisingEnd = genesisTime - 100
				c.ValueDate = genesisTime - 100
			},
			err: types.ErrInvalidFundraisingEnd,
		},
		{
			name: "value date in the past",
			mutate: func(c *types.PoolConfig) {
				c.SubscribeLimit.FundraisingStart = genesisTime - 200
				c.ValueDate = genesisTime - 100
			},
			err: types.ErrInvalidValueDate,
		},
		{
			name:   "fundraising ends before value date",
			mutate: func(c *types.PoolConfig) { c.ValueDate = end + 1 },
			err:    types.ErrInvalidMaturity,
		},
		{
			name:   "missing vault",
			mutate: func(c *types.PoolConfig) { c.Vault = "" },
			err:    types.ErrInvalidVault,
		},
		{
			name:   "missing carry collector",
			mutate: func(c *types.PoolConfig) { c.CarryCollector = "" },
			err:    types.ErrInvalidCarryCollector,
		},
		{
			name:   "missing subscribe nav manager",
			mutate: func(c *types.PoolConfig) { c.SubscribeNavManager = "" },
			err:    types.ErrInvalidSubscribeNavMgr,
		},
		{
			name:   "missing redeem nav manager",
			mutate: func(c *types.PoolConfig) { c.RedeemNavManager = "" },
			err:    types.ErrInvalidRedeemNavMgr,
		},
		{
			name:   "carry rate above 100%",
			mutate: func(c *types.PoolConfig) { c.CarryRate = types.MaxCarryRate + 1 },
			err:    types.ErrInvalidCarryRate,
		},
		{
			name:   "share ledger rejects currency",
			mutate: func(c *types.PoolConfig) { c.ShareLedger = strictLedger },
			err:    types.ErrCurrencyNotAllowed,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			config := s.defaultConfig()
			if tt.mutate != nil {
				tt.mutate(&config)
			}
			caller := s.issuer
			if tt.caller != "" {
				caller = tt.caller
			}

			_, err := s.keeper.CreatePool(s.ctx, caller, config)
			s.requireErr(err, tt.err)
			s.Require().Empty(s.keeper.GetAllPools(s.ctx))
			s.Require().Empty(s.ledger.GetAllGroupings(s.ctx))
		})
	}
}

func (s *KeeperTestSuite) TestCreatePoolBoundaries() {
	// full carry, value date equal to start and end equal to value date
	pool := s.createPool(func(c *types.PoolConfig) {
		c.CarryRate = types.MaxCarryRate
		c.ValueDate = genesisTime
		c.SubscribeLimit.FundraisingStart = genesisTime
		c.SubscribeLimit.FundraisingEnd = genesisTime
		c.SubscribeLimit.SubscribeMin = usd(5)
		c.SubscribeLimit.SubscribeMax = usd(5)
	})
	s.Require().Equal(uint32(types.MaxCarryRate), pool.Config.CarryRate)
}

func (s *KeeperTestSuite) TestUpdateWhitelist() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.Whitelist = []string{s.alice}
	})
	s.Require().False(pool.Permissionless)
	s.Require().Equal([]string{s.alice}, s.keeper.GetWhitelist(s.ctx, pool.PoolID))

	s.subscribe(pool, s.alice, usd(100))
	_, err := s.keeper.Subscribe(s.ctx, s.bob, pool.PoolID, usd(100), 0, s.now()+60)
	s.requireErr(err, types.ErrNotWhitelisted)

	err = s.keeper.UpdateWhitelist(s.ctx, s.alice, pool.PoolID, []string{s.alice, s.bob})
	s.requireErr(err, types.ErrNotPoolManager)

	s.Require().NoError(s.keeper.UpdateWhitelist(s.ctx, s.issuer, pool.PoolID, []string{s.bob}))
	s.Require().Equal([]string{s.bob}, s.keeper.GetWhitelist(s.ctx, pool.PoolID))
	s.Require().Equal([]string{s.bob}, s.keeper.GetPool(s.ctx, pool.PoolID).Config.Whitelist)
	s.Require().Len(s.events(types.EventTypeWhitelistUpdated), 1)

	s.subscribe(pool, s.bob, usd(100))
	_, err = s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(100), 0, s.now()+60)
	s.requireErr(err, types.ErrNotWhitelisted)
}

func (s *KeeperTestSuite) TestUpdateWhitelistPermissionless() {
	pool := s.createPool(nil)

	err := s.keeper.UpdateWhitelist(s.ctx, s.issuer, pool.PoolID, []string{s.alice})
	s.requireErr(err, types.ErrPoolIsPermissionless)

	err = s.keeper.UpdateWhitelist(s.ctx, s.issuer, "missing", []string{s.alice})
	s.requireErr(err, types.ErrPoolNotFound)
}

type staticWhitelist map[string]bool

func (w staticWhitelist) IsWhitelisted(_ context.Context, _, addr string) bool {
	return w[addr]
}

func (s *KeeperTestSuite) TestWhitelistCheckerOverride() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.Whitelist = []string{s.alice}
	})
	s.keeper.SetWhitelistChecker(staticWhitelist{s.bob: true})

	s.subscribe(pool, s.bob, usd(100))
	_, err := s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(100), 0, s.now()+60)
	s.requireErr(err, types.ErrNotWhitelisted)
}
