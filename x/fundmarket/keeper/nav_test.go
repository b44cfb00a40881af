package keeper

import (
	"cosmossdk.io/math"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

func (s *KeeperTestSuite) TestSetSubscribeNav() {
	pool := s.createPool(nil)
	vd := pool.Config.ValueDate

	err := s.keeper.SetSubscribeNav(s.ctx, s.issuer, pool.PoolID, vd+100, navOf("1.01"))
	s.requireErr(err, types.ErrNotNavManager)

	err = s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+100, math.ZeroInt())
	s.requireErr(err, types.ErrInvalidNav)

	err = s.keeper.SetSubscribeNav(s.ctx, s.subNav, "missing", vd+100, navOf("1.01"))
	s.requireErr(err, types.ErrPoolNotFound)

	// the seed checkpoint sits on the value date
	for _, ts := range []int64{vd - 1, vd} {
		err = s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, ts, navOf("1.01"))
		s.requireErr(err, types.ErrInvalidNavTime)
	}

	s.resetEvents()
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+100, navOf("1.01")))
	events := s.events(types.EventTypeSubscribeNavSet)
	s.Require().Len(events, 1)
	s.Require().Equal("1010000", attribute(events[0], types.AttributeKeyNav))

	for _, ts := range []int64{vd + 50, vd + 100} {
		err = s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, ts, navOf("1.02"))
		s.requireErr(err, types.ErrInvalidNavTime)
	}

	checkpoints := s.keeper.GetNavCheckpoints(s.ctx, pool.PoolID)
	s.Require().Len(checkpoints, 2)
	s.Require().Less(checkpoints[0].Timestamp, checkpoints[1].Timestamp)
}

func (s *KeeperTestSuite) TestLookupSubscribeNav() {
	pool := s.createPool(nil)
	vd := pool.Config.ValueDate
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+100, navOf("1.01")))
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+200, navOf("1.03")))

	tests := []struct {
		name string
		at   int64
		nav  string
	}{
		{"before value date uses seed", genesisTime, "1"},
		{"at value date", vd, "1"},
		{"just before first update", vd + 99, "1"},
		{"at first update", vd + 100, "1.01"},
		{"between updates", vd + 150, "1.01"},
		{"at second update", vd + 200, "1.03"},
		{"far future", vd + 1_000_000, "1.03"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			checkpoint, err := s.keeper.LookupSubscribeNav(s.ctx, pool.PoolID, tt.at)
			s.Require().NoError(err)
			s.requireIntEqual(navOf(tt.nav), checkpoint.Nav)
		})
	}

	_, err := s.keeper.LookupSubscribeNav(s.ctx, "missing", vd)
	s.requireErr(err, types.ErrNavNotFound)
}

func (s *KeeperTestSuite) TestSubscribeUsesNavInForce() {
	pool := s.createPool(nil)
	vd := pool.Config.ValueDate
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+100, navOf("1.25")))

	s.setTime(vd + 150)
	result := s.subscribe(pool, s.alice, usd(1000))
	s.requireIntEqual(navOf("1.25"), result.Nav)
	s.requireIntEqual(units(800), result.Value)

	// after the value date subscriptions do not count toward the hard cap
	s.requireIntEqual(math.ZeroInt(), s.keeper.GetPool(s.ctx, pool.PoolID).FundraisingAmount)
}

func (s *KeeperTestSuite) TestSubscribeTruncatesValue() {
	pool := s.createPool(func(c *types.PoolConfig) {
		c.SubscribeLimit.SubscribeMin = math.OneInt()
	})
	vd := pool.Config.ValueDate
	s.Require().NoError(s.keeper.SetSubscribeNav(s.ctx, s.subNav, pool.PoolID, vd+1, navOf("3")))

	s.setTime(vd + 1)
	result := s.subscribe(pool, s.alice, math.OneInt())
	s.requireIntEqual(math.NewInt(333_333_333_333), result.Value)
}
