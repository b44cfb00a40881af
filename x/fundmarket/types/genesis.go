package types

import (
	errorsmod "cosmossdk.io/errors"
)

// GenesisState is the exported state of the market
type GenesisState struct {
	Params      Params             `json:"params"`
	Pools       []Pool             `json:"pools"`
	Checkpoints []PoolCheckpoints  `json:"checkpoints"`
	Slots       []RedeemSlot       `json:"slots"`
	Origins     []RedemptionOrigin `json:"origins"`
}

// PoolCheckpoints groups the NAV state of one pool
type PoolCheckpoints struct {
	PoolID         string          `json:"pool_id"`
	AllTimeHighNav string          `json:"all_time_high_nav"`
	Checkpoints    []NavCheckpoint `json:"checkpoints"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

// Validate performs basic genesis validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	pools := make(map[string]bool, len(gs.Pools))
	for _, pool := range gs.Pools {
		if pool.PoolID == "" || pools[pool.PoolID] {
			return errorsmod.Wrapf(ErrInvalidPoolConfig, "duplicate or empty pool id %q", pool.PoolID)
		}
		pools[pool.PoolID] = true
	}
	for _, slot := range gs.Slots {
		if !pools[slot.PoolID] {
			return errorsmod.Wrapf(ErrPoolNotFound, "slot %s references %s", slot.SlotID, slot.PoolID)
		}
	}
	return nil
}
