package types

import (
	"strconv"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Event types
const (
	EventTypePoolCreated      = "fundmarket_pool_created"
	EventTypeSubscribeNavSet  = "fundmarket_subscribe_nav_set"
	EventTypeSubscribed       = "fundmarket_subscribed"
	EventTypeRedeemRequested  = "fundmarket_redeem_requested"
	EventTypeRedeemRevoked    = "fundmarket_redeem_revoked"
	EventTypeRedeemSlotClosed = "fundmarket_redeem_slot_closed"
	EventTypeCarrySettled     = "fundmarket_carry_settled"
	EventTypeRedeemNavSet     = "fundmarket_redeem_nav_set"
	EventTypeRepaid           = "fundmarket_repaid"
	EventTypeClaimed          = "fundmarket_claimed"
	EventTypeWhitelistUpdated = "fundmarket_whitelist_updated"
)

// Event attribute keys
const (
	AttributeKeyPoolID          = "pool_id"
	AttributeKeyCurrency        = "currency"
	AttributeKeyShareLedger     = "share_ledger"
	AttributeKeyShareGroupingID = "share_grouping_id"
	AttributeKeyNav             = "nav"
	AttributeKeyTimestamp       = "timestamp"
	AttributeKeyBuyer           = "buyer"
	AttributeKeyPositionID      = "position_id"
	AttributeKeyValue           = "value"
	AttributeKeyPayment         = "payment"
	AttributeKeyShareID         = "share_id"
	AttributeKeyRedemptionID    = "redemption_id"
	AttributeKeySlotID          = "slot_id"
	AttributeKeyCarryAmount     = "carry_amount"
	AttributeKeyAmount          = "amount"
	AttributeKeyCurrencyAmount  = "currency_amount"
	AttributeKeyCount           = "count"
)

// Notification is a committed state change. Each one maps to exactly one
// SDK event and is handed to registered listeners after commit.
type Notification interface {
	EventType() string
	ToEvent() sdk.Event
}

// Listener receives notifications after the operation producing them commits
type Listener interface {
	OnNotification(ctx sdk.Context, n Notification)
}

// OperationObserver is implemented by listeners that also track operation
// outcomes, including rejected ones
type OperationObserver interface {
	ObserveOperation(op string, duration time.Duration, err error)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// PoolCreated is emitted once per pool
type PoolCreated struct {
	PoolID          string
	Currency        string
	ShareLedger     string
	ShareGroupingID string
}

func (PoolCreated) EventType() string { return EventTypePoolCreated }

func (n PoolCreated) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeyCurrency, n.Currency),
		sdk.NewAttribute(AttributeKeyShareLedger, n.ShareLedger),
		sdk.NewAttribute(AttributeKeyShareGroupingID, n.ShareGroupingID),
	)
}

// SubscribeNavSet is emitted for the seed checkpoint and every later one
type SubscribeNavSet struct {
	PoolID    string
	Nav       math.Int
	Timestamp int64
}

func (SubscribeNavSet) EventType() string { return EventTypeSubscribeNavSet }

func (n SubscribeNavSet) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeyNav, n.Nav.String()),
		sdk.NewAttribute(AttributeKeyTimestamp, strconv.FormatInt(n.Timestamp, 10)),
	)
}

// Subscribed records a currency payment converted into share value
type Subscribed struct {
	PoolID     string
	Buyer      string
	PositionID uint64
	Value      math.Int
	Currency   string
	Nav        math.Int
	Payment    math.Int
	// CountsTowardCap is set for subscriptions before the value date, the
	// ones added to the pool's fundraising amount. Not an event attribute.
	CountsTowardCap bool
}

func (Subscribed) EventType() string { return EventTypeSubscribed }

func (n Subscribed) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeyBuyer, n.Buyer),
		sdk.NewAttribute(AttributeKeyPositionID, formatID(n.PositionID)),
		sdk.NewAttribute(AttributeKeyValue, n.Value.String()),
		sdk.NewAttribute(AttributeKeyCurrency, n.Currency),
		sdk.NewAttribute(AttributeKeyNav, n.Nav.String()),
		sdk.NewAttribute(AttributeKeyPayment, n.Payment.String()),
	)
}

// RedeemRequested records value moved from a share into the open slot
type RedeemRequested struct {
	PoolID       string
	Buyer        string
	ShareID      uint64
	RedemptionID uint64
	Value        math.Int

	// SlotID is not part of the event; listeners use it to index the slot
	SlotID string
}

func (RedeemRequested) EventType() string { return EventTypeRedeemRequested }

func (n RedeemRequested) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeyBuyer, n.Buyer),
		sdk.NewAttribute(AttributeKeyShareID, formatID(n.ShareID)),
		sdk.NewAttribute(AttributeKeyRedemptionID, formatID(n.RedemptionID)),
		sdk.NewAttribute(AttributeKeyValue, n.Value.String()),
	)
}

// RedeemRevoked records a redemption returned to a share position
type RedeemRevoked struct {
	RedemptionID uint64
	ShareID      uint64
	Value        math.Int

	PoolID string
	SlotID string
}

func (RedeemRevoked) EventType() string { return EventTypeRedeemRevoked }

func (n RedeemRevoked) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyRedemptionID, formatID(n.RedemptionID)),
		sdk.NewAttribute(AttributeKeyShareID, formatID(n.ShareID)),
		sdk.NewAttribute(AttributeKeyValue, n.Value.String()),
	)
}

// RedeemSlotClosed freezes a slot's membership
type RedeemSlotClosed struct {
	PoolID string
	SlotID string
}

func (RedeemSlotClosed) EventType() string { return EventTypeRedeemSlotClosed }

func (n RedeemSlotClosed) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeySlotID, n.SlotID),
	)
}

// CarrySettled is emitted only when a positive carry was charged
type CarrySettled struct {
	PoolID      string
	SlotID      string
	CarryAmount math.Int
}

func (CarrySettled) EventType() string { return EventTypeCarrySettled }

func (n CarrySettled) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeySlotID, n.SlotID),
		sdk.NewAttribute(AttributeKeyCarryAmount, n.CarryAmount.String()),
	)
}

// RedeemNavSet carries the per-unit NAV after carry. GrossNav is the NAV as
// set, before carry; it feeds the all-time high and is not an event attribute.
type RedeemNavSet struct {
	PoolID   string
	SlotID   string
	Nav      math.Int
	GrossNav math.Int
}

func (RedeemNavSet) EventType() string { return EventTypeRedeemNavSet }

func (n RedeemNavSet) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeySlotID, n.SlotID),
		sdk.NewAttribute(AttributeKeyNav, n.Nav.String()),
	)
}

// Repaid records currency escrowed into a priced slot
type Repaid struct {
	SlotID        string
	Currency      string
	Amount        math.Int
	EscrowBalance math.Int

	PoolID string
}

func (Repaid) EventType() string { return EventTypeRepaid }

func (n Repaid) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeySlotID, n.SlotID),
		sdk.NewAttribute(AttributeKeyCurrency, n.Currency),
		sdk.NewAttribute(AttributeKeyAmount, n.Amount.String()),
	)
}

// Claimed records a payout drawn from a slot's escrow
type Claimed struct {
	RedemptionID   uint64
	CurrencyAmount math.Int

	PoolID        string
	SlotID        string
	EscrowBalance math.Int
}

func (Claimed) EventType() string { return EventTypeClaimed }

func (n Claimed) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyRedemptionID, formatID(n.RedemptionID)),
		sdk.NewAttribute(AttributeKeyCurrencyAmount, n.CurrencyAmount.String()),
	)
}

// WhitelistUpdated records a replaced whitelist
type WhitelistUpdated struct {
	PoolID string
	Count  int
}

func (WhitelistUpdated) EventType() string { return EventTypeWhitelistUpdated }

func (n WhitelistUpdated) ToEvent() sdk.Event {
	return sdk.NewEvent(n.EventType(),
		sdk.NewAttribute(AttributeKeyPoolID, n.PoolID),
		sdk.NewAttribute(AttributeKeyCount, strconv.Itoa(n.Count)),
	)
}
