package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper defines the currency transfer primitives the market consumes
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// ValueLedger defines the value-bearing position primitives. The market only
// decides how much value to mint, burn or move; the ledger stores positions.
type ValueLedger interface {
	DeriveGroupingID(ledger string, attributes []byte) string
	CreateGrouping(ctx context.Context, ledger, owner string, attributes []byte) (string, error)
	MintValue(ctx context.Context, ledger, owner, groupingID string, positionID uint64, value math.Int) (uint64, error)
	BurnValue(ctx context.Context, ledger string, positionID uint64, value math.Int) error
	ValueOf(ctx context.Context, ledger string, positionID uint64) (math.Int, error)
	GroupOf(ctx context.Context, ledger string, positionID uint64) (string, error)
	OwnerOf(ctx context.Context, ledger string, positionID uint64) (string, error)
	IsCurrencyAllowed(ctx context.Context, ledger, denom string) bool
	ValidateValueDate(ctx context.Context, ledger string, valueDate, now int64) error
}

// WhitelistChecker answers whitelist membership for non-permissionless pools
type WhitelistChecker interface {
	IsWhitelisted(ctx context.Context, poolID, addr string) bool
}
