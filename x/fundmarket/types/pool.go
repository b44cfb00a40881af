package types

import (
	"encoding/hex"
	"encoding/json"

	"cosmossdk.io/math"
	"github.com/cometbft/cometbft/crypto/tmhash"
)

// SubscribeLimit bounds the fundraising of a pool
type SubscribeLimit struct {
	HardCap          math.Int `json:"hard_cap"`
	SubscribeMin     math.Int `json:"subscribe_min"`
	SubscribeMax     math.Int `json:"subscribe_max"`
	FundraisingStart int64    `json:"fundraising_start"`
	FundraisingEnd   int64    `json:"fundraising_end"`
}

// PoolConfig is the immutable configuration supplied at pool creation
type PoolConfig struct {
	ShareLedger         string         `json:"share_ledger"`
	RedemptionLedger    string         `json:"redemption_ledger"`
	Currency            string         `json:"currency"`
	CarryRate           uint32         `json:"carry_rate"`
	Vault               string         `json:"vault"`
	ValueDate           int64          `json:"value_date"`
	CarryCollector      string         `json:"carry_collector"`
	SubscribeNavManager string         `json:"subscribe_nav_manager"`
	RedeemNavManager    string         `json:"redeem_nav_manager"`
	Whitelist           []string       `json:"whitelist"`
	SubscribeLimit      SubscribeLimit `json:"subscribe_limit"`
}

// Pool is a registered open-ended fund
type Pool struct {
	PoolID          string     `json:"pool_id"`
	Config          PoolConfig `json:"config"`
	ShareGroupingID string     `json:"share_grouping_id"`
	PoolManager     string     `json:"pool_manager"`
	Permissionless  bool       `json:"permissionless"`
	CreateTime      int64      `json:"create_time"`

	// Mutable state
	FundraisingAmount   math.Int `json:"fundraising_amount"`
	CurrentRedeemSlotID string   `json:"current_redeem_slot_id"`
	RedeemSlotSequence  uint64   `json:"redeem_slot_sequence"`
}

// NewPool creates a pool with zeroed mutable state
func NewPool(poolID, groupingID, manager string, config PoolConfig, createTime int64) *Pool {
	return &Pool{
		PoolID:            poolID,
		Config:            config,
		ShareGroupingID:   groupingID,
		PoolManager:       manager,
		Permissionless:    len(config.Whitelist) == 0,
		CreateTime:        createTime,
		FundraisingAmount: math.ZeroInt(),
	}
}

// HasOpenSlot reports whether the pool's current redeem slot has been allocated
func (p *Pool) HasOpenSlot() bool {
	return p.CurrentRedeemSlotID != ""
}

// BeforeValueDate reports whether now still counts toward the hard cap
func (p *Pool) BeforeValueDate(now int64) bool {
	return now < p.Config.ValueDate
}

// DerivePoolID hashes the share ledger reference and grouping id into a pool id
func DerivePoolID(shareLedger, groupingID string) string {
	bz := make([]byte, 0, len(shareLedger)+len(groupingID)+1)
	bz = append(bz, shareLedger...)
	bz = append(bz, keySeparator)
	bz = append(bz, groupingID...)
	return hex.EncodeToString(tmhash.Sum(bz))
}

// groupingAttributes is the canonical content a share grouping is derived from
type groupingAttributes struct {
	Issuer     string     `json:"issuer"`
	Config     PoolConfig `json:"config"`
	CreateTime int64      `json:"create_time"`
}

// ShareGroupingAttributes encodes the attributes of a pool's share grouping.
// Identical configs created by the same issuer at the same time collide.
func ShareGroupingAttributes(issuer string, config PoolConfig, createTime int64) []byte {
	bz, _ := json.Marshal(groupingAttributes{Issuer: issuer, Config: config, CreateTime: createTime})
	return bz
}

type slotAttributes struct {
	PoolID   string `json:"pool_id"`
	Sequence uint64 `json:"sequence"`
}

// RedeemSlotAttributes encodes the attributes of a redeem slot grouping
func RedeemSlotAttributes(poolID string, sequence uint64) []byte {
	bz, _ := json.Marshal(slotAttributes{PoolID: poolID, Sequence: sequence})
	return bz
}
