package types

import (
	"cosmossdk.io/math"
)

// Redeem slot lifecycle
const (
	SlotStatusOpen   = "open"
	SlotStatusClosed = "closed"
	SlotStatusPriced = "priced"
)

// RedeemSlot batches the redemption requests of one pool
type RedeemSlot struct {
	SlotID   string `json:"slot_id"`
	PoolID   string `json:"pool_id"`
	Sequence uint64 `json:"sequence"`
	Status   string `json:"status"`

	TotalValue         math.Int `json:"total_value"`
	RedeemNav          math.Int `json:"redeem_nav"`
	CarryAmount        math.Int `json:"carry_amount"`
	EscrowBalance      math.Int `json:"escrow_balance"`
	RepaidBalanceAtSet math.Int `json:"repaid_balance_at_set"`

	OpenedAt int64 `json:"opened_at"`
	ClosedAt int64 `json:"closed_at,omitempty"`
	PricedAt int64 `json:"priced_at,omitempty"`
}

// NewRedeemSlot creates an open slot
func NewRedeemSlot(slotID, poolID string, sequence uint64, openedAt int64) *RedeemSlot {
	return &RedeemSlot{
		SlotID:             slotID,
		PoolID:             poolID,
		Sequence:           sequence,
		Status:             SlotStatusOpen,
		TotalValue:         math.ZeroInt(),
		RedeemNav:          math.ZeroInt(),
		CarryAmount:        math.ZeroInt(),
		EscrowBalance:      math.ZeroInt(),
		RepaidBalanceAtSet: math.ZeroInt(),
		OpenedAt:           openedAt,
	}
}

// IsOpen reports whether the slot accepts requests and reversals
func (s *RedeemSlot) IsOpen() bool { return s.Status == SlotStatusOpen }

// IsPriced reports whether the redemption NAV has been set
func (s *RedeemSlot) IsPriced() bool { return s.Status == SlotStatusPriced }

// RedemptionOrigin links a redemption position back to the share it came from
type RedemptionOrigin struct {
	RedemptionID  uint64 `json:"redemption_id"`
	PoolID        string `json:"pool_id"`
	SlotID        string `json:"slot_id"`
	OriginShareID uint64 `json:"origin_share_id"`
}

// NavCheckpoint is a subscribe NAV effective from Timestamp onward
type NavCheckpoint struct {
	Timestamp int64    `json:"timestamp"`
	Nav       math.Int `json:"nav"`
}
