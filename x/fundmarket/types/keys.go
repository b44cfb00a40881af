package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Module name and store key
const (
	ModuleName = "fundmarket"
	StoreKey   = ModuleName
	RouterKey  = ModuleName
)

// Store key prefixes
var (
	ParamsKey                 = []byte{0x01}
	PoolKeyPrefix             = []byte{0x02}
	NavCheckpointKeyPrefix    = []byte{0x03}
	AllTimeHighNavKeyPrefix   = []byte{0x04}
	RedeemSlotKeyPrefix       = []byte{0x05}
	PoolSlotIndexKeyPrefix    = []byte{0x06}
	RedemptionOriginKeyPrefix = []byte{0x07}
	WhitelistKeyPrefix        = []byte{0x08}
)

// keySeparator terminates variable length ids inside composite keys
const keySeparator = byte(0x00)

func poolScopedPrefix(prefix []byte, poolID string) []byte {
	key := make([]byte, 0, len(prefix)+len(poolID)+1)
	key = append(key, prefix...)
	key = append(key, poolID...)
	return append(key, keySeparator)
}

// PoolKey returns the store key of a pool
func PoolKey(poolID string) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), poolID...)
}

// NavCheckpointPrefix returns the prefix holding all checkpoints of a pool
func NavCheckpointPrefix(poolID string) []byte {
	return poolScopedPrefix(NavCheckpointKeyPrefix, poolID)
}

// NavCheckpointKey returns the key of a checkpoint; timestamps sort in big-endian order
func NavCheckpointKey(poolID string, timestamp int64) []byte {
	return append(NavCheckpointPrefix(poolID), sdk.Uint64ToBigEndian(uint64(timestamp))...)
}

// AllTimeHighNavKey returns the key of a pool's all-time-high redemption NAV
func AllTimeHighNavKey(poolID string) []byte {
	return append(append([]byte{}, AllTimeHighNavKeyPrefix...), poolID...)
}

// RedeemSlotKey returns the key of a redeem slot
func RedeemSlotKey(slotID string) []byte {
	return append(append([]byte{}, RedeemSlotKeyPrefix...), slotID...)
}

// PoolSlotIndexPrefix returns the prefix of a pool's (sequence -> slot id) index
func PoolSlotIndexPrefix(poolID string) []byte {
	return poolScopedPrefix(PoolSlotIndexKeyPrefix, poolID)
}

// PoolSlotIndexKey returns the index key of the slot with the given sequence
func PoolSlotIndexKey(poolID string, sequence uint64) []byte {
	return append(PoolSlotIndexPrefix(poolID), sdk.Uint64ToBigEndian(sequence)...)
}

// RedemptionOriginKey returns the key of a redemption's back-reference
func RedemptionOriginKey(redemptionID uint64) []byte {
	return append(append([]byte{}, RedemptionOriginKeyPrefix...), sdk.Uint64ToBigEndian(redemptionID)...)
}

// WhitelistPrefix returns the prefix of a pool's whitelist entries
func WhitelistPrefix(poolID string) []byte {
	return poolScopedPrefix(WhitelistKeyPrefix, poolID)
}

// WhitelistKey returns the key marking addr as whitelisted in a pool
func WhitelistKey(poolID, addr string) []byte {
	return append(WhitelistPrefix(poolID), addr...)
}
