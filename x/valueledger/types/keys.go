package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	ModuleName = "valueledger"
	StoreKey   = ModuleName
	RouterKey  = ModuleName
)

// Store key prefixes
var (
	LedgerKeyPrefix     = []byte{0x01}
	GroupingKeyPrefix   = []byte{0x02}
	PositionKeyPrefix   = []byte{0x03}
	SequenceKeyPrefix   = []byte{0x04}
	OwnerIndexKeyPrefix = []byte{0x05}
)

func ledgerScoped(prefix []byte, ledger string) []byte {
	key := make([]byte, 0, len(prefix)+len(ledger)+1)
	key = append(key, prefix...)
	key = append(key, ledger...)
	return append(key, 0x00)
}

// LedgerKey returns the key of a registered ledger
func LedgerKey(ref string) []byte {
	return append(append([]byte{}, LedgerKeyPrefix...), ref...)
}

// GroupingKey returns the key of a grouping inside a ledger
func GroupingKey(ledger, groupingID string) []byte {
	return append(ledgerScoped(GroupingKeyPrefix, ledger), groupingID...)
}

// PositionPrefix returns the prefix of all positions of a ledger
func PositionPrefix(ledger string) []byte {
	return ledgerScoped(PositionKeyPrefix, ledger)
}

// PositionKey returns the key of a position
func PositionKey(ledger string, positionID uint64) []byte {
	return append(PositionPrefix(ledger), sdk.Uint64ToBigEndian(positionID)...)
}

// SequenceKey returns the key of a ledger's last issued position id
func SequenceKey(ledger string) []byte {
	return append(append([]byte{}, SequenceKeyPrefix...), ledger...)
}

// OwnerIndexPrefix returns the prefix of an owner's positions in a ledger
func OwnerIndexPrefix(ledger, owner string) []byte {
	return append(append(ledgerScoped(OwnerIndexKeyPrefix, ledger), owner...), 0x00)
}

// OwnerIndexKey returns the owner index entry of a position
func OwnerIndexKey(ledger, owner string, positionID uint64) []byte {
	return append(OwnerIndexPrefix(ledger, owner), sdk.Uint64ToBigEndian(positionID)...)
}
