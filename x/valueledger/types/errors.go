package types

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	ErrLedgerNotFound    = errorsmod.Register(ModuleName, 2, "ledger not found")
	ErrLedgerExists      = errorsmod.Register(ModuleName, 3, "ledger already registered")
	ErrGroupingNotFound  = errorsmod.Register(ModuleName, 4, "grouping not found")
	ErrGroupingExists    = errorsmod.Register(ModuleName, 5, "grouping already exists")
	ErrPositionNotFound  = errorsmod.Register(ModuleName, 6, "position not found")
	ErrGroupingMismatch  = errorsmod.Register(ModuleName, 7, "position belongs to another grouping")
	ErrInsufficientValue = errorsmod.Register(ModuleName, 8, "insufficient value")
	ErrInvalidValueDate  = errorsmod.Register(ModuleName, 9, "invalid valueDate")
	ErrInvalidAmount     = errorsmod.Register(ModuleName, 10, "invalid amount")
	ErrInvalidLedger     = errorsmod.Register(ModuleName, 11, "invalid ledger")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 12, "unauthorized")
	ErrNotOwner          = errorsmod.Register(ModuleName, 13, "not position owner")
	ErrInvalidAddress    = errorsmod.Register(ModuleName, 14, "invalid address")
)
