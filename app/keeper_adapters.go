package app

import (
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"

	fundmarkettypes "github.com/openalpha/fundmarket/x/fundmarket/types"
	valueledgerkeeper "github.com/openalpha/fundmarket/x/valueledger/keeper"
)

// The fund market consumes the SDK bank keeper and the value ledger keeper
// directly; these assertions keep the expected-keeper interfaces in step.
var (
	_ fundmarkettypes.BankKeeper  = bankkeeper.BaseKeeper{}
	_ fundmarkettypes.ValueLedger = (*valueledgerkeeper.Keeper)(nil)
)
