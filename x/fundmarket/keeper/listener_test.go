package keeper

import (
	"sync"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/fundmarket/x/fundmarket/types"
)

type recordingListener struct {
	mu            sync.Mutex
	notifications []types.Notification
	ops           []string
	failed        []string
}

func (l *recordingListener) OnNotification(_ sdk.Context, n types.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifications = append(l.notifications, n)
}

func (l *recordingListener) ObserveOperation(op string, _ time.Duration, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
	if err != nil {
		l.failed = append(l.failed, op)
	}
}

func (l *recordingListener) eventTypes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.notifications))
	for _, n := range l.notifications {
		out = append(out, n.EventType())
	}
	return out
}

func (s *KeeperTestSuite) TestListenerSeesCommittedNotifications() {
	listener := &recordingListener{}
	s.keeper.AddListener(listener)

	pool := s.createPool(nil)
	s.Require().Equal([]string{types.EventTypePoolCreated, types.EventTypeSubscribeNavSet}, listener.eventTypes())

	created, ok := listener.notifications[0].(types.PoolCreated)
	s.Require().True(ok)
	s.Require().Equal(pool.PoolID, created.PoolID)
	s.Require().Equal(pool.ShareGroupingID, created.ShareGroupingID)

	_, err := s.keeper.Subscribe(s.ctx, s.alice, pool.PoolID, usd(100), 0, genesisTime-1)
	s.requireErr(err, types.ErrExpired)
	s.Require().Len(listener.eventTypes(), 2)
	s.Require().Equal([]string{"create_pool", "subscribe"}, listener.ops)
	s.Require().Equal([]string{"subscribe"}, listener.failed)

	shareID := s.subscribe(pool, s.alice, usd(100)).PositionID
	s.afterValueDate(pool)
	s.requestRedeem(pool, s.alice, shareID, units(100))
	slotID := s.closeSlot(pool)

	s.Require().Equal([]string{
		types.EventTypePoolCreated,
		types.EventTypeSubscribeNavSet,
		types.EventTypeSubscribed,
		types.EventTypeRedeemRequested,
		types.EventTypeRedeemSlotClosed,
	}, listener.eventTypes())

	subscribed, ok := listener.notifications[2].(types.Subscribed)
	s.Require().True(ok)
	s.Require().True(subscribed.CountsTowardCap)

	requested, ok := listener.notifications[3].(types.RedeemRequested)
	s.Require().True(ok)
	s.Require().Equal(slotID, requested.SlotID)

	late := s.subscribe(pool, s.bob, usd(100))
	last := listener.notifications[len(listener.notifications)-1].(types.Subscribed)
	s.Require().Equal(late.PositionID, last.PositionID)
	s.Require().False(last.CountsTowardCap)
}

func (s *KeeperTestSuite) TestRedeemNavSetCarriesGrossNav() {
	pool, shareID := s.fundedPool(func(c *types.PoolConfig) { c.CarryRate = 100 })
	s.requestRedeem(pool, s.alice, shareID, units(10_000))
	slotID := s.closeSlot(pool)

	listener := &recordingListener{}
	s.keeper.AddListener(listener)
	result, err := s.keeper.SetRedeemNav(s.ctx, s.redeemNav, pool.PoolID, slotID, navOf("1.02"), math.ZeroInt())
	s.Require().NoError(err)

	var priced *types.RedeemNavSet
	for _, n := range listener.notifications {
		if e, ok := n.(types.RedeemNavSet); ok {
			priced = &e
		}
	}
	s.Require().NotNil(priced)
	s.requireIntEqual(result.PerUnitNav, priced.Nav)
	s.requireIntEqual(navOf("1.02"), priced.GrossNav)
	s.Require().True(priced.GrossNav.GT(priced.Nav))
}

func (s *KeeperTestSuite) TestFailedOperationEmitsNothing() {
	pool, shareID := s.fundedPool(nil)
	listener := &recordingListener{}
	s.keeper.AddListener(listener)
	s.resetEvents()

	_, err := s.keeper.RequestRedeem(s.ctx, s.alice, pool.PoolID, shareID, 0, units(20_000))
	s.requireErr(err, types.ErrInsufficientValue)

	s.Require().Empty(s.ctx.EventManager().Events())
	s.Require().Empty(listener.eventTypes())
	s.Require().Equal([]string{"request_redeem"}, listener.failed)

	// the failed request must not have allocated a slot
	s.Require().Empty(s.keeper.GetPool(s.ctx, pool.PoolID).CurrentRedeemSlotID)
	s.Require().Empty(s.keeper.GetRedeemSlotsByPool(s.ctx, pool.PoolID))
}
