package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Error classes. Every failure returned by the keeper wraps exactly one of
// these, so callers can branch with errors.Is on the class while the wrapped
// message names the precondition that failed.
var (
	ErrValidation        = errorsmod.Register(ModuleName, 2, "validation failed")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 3, "unauthorized")
	ErrInvalidState      = errorsmod.Register(ModuleName, 4, "invalid state")
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 5, "insufficient resource")
	ErrNotFound          = errorsmod.Register(ModuleName, 6, "not found")
)

// Pool creation
var (
	ErrCurrencyNotAllowed       = errorsmod.Wrap(ErrValidation, "currency not allowed")
	ErrShareLedgerNotAllowed    = errorsmod.Wrap(ErrValidation, "share not allowed")
	ErrRedeemLedgerNotAllowed   = errorsmod.Wrap(ErrValidation, "redemption not allowed")
	ErrInvalidShareManager      = errorsmod.Wrap(ErrUnauthorized, "invalid share manager")
	ErrInvalidRedeemManager     = errorsmod.Wrap(ErrUnauthorized, "invalid redemption manager")
	ErrInvalidMinMax            = errorsmod.Wrap(ErrValidation, "invalid min and max")
	ErrInvalidValueDate         = errorsmod.Wrap(ErrValidation, "invalid valueDate")
	ErrInvalidFundraisingWindow = errorsmod.Wrap(ErrValidation, "invalid startTime and endTime")
	ErrInvalidFundraisingEnd    = errorsmod.Wrap(ErrValidation, "invalid endTime")
	ErrInvalidMaturity          = errorsmod.Wrap(ErrValidation, "invalid maturity")
	ErrInvalidVault             = errorsmod.Wrap(ErrValidation, "invalid vault")
	ErrInvalidCarryCollector    = errorsmod.Wrap(ErrValidation, "invalid carryCollector")
	ErrInvalidSubscribeNavMgr   = errorsmod.Wrap(ErrValidation, "invalid subscribeNavManager")
	ErrInvalidRedeemNavMgr      = errorsmod.Wrap(ErrValidation, "invalid redeemNavManager")
	ErrInvalidCarryRate         = errorsmod.Wrap(ErrValidation, "invalid carryRate")
	ErrPoolAlreadyExists        = errorsmod.Wrap(ErrInvalidState, "slot already exists")
	ErrPoolNotFound             = errorsmod.Wrap(ErrNotFound, "pool not found")
)

// Subscription
var (
	ErrExpired              = errorsmod.Wrap(ErrValidation, "expired")
	ErrNotWhitelisted       = errorsmod.Wrap(ErrUnauthorized, "not in whitelist")
	ErrFundraisingNotStart  = errorsmod.Wrap(ErrValidation, "fundraising not started")
	ErrFundraisingEnded     = errorsmod.Wrap(ErrValidation, "fundraising ended")
	ErrHardCapReached       = errorsmod.Wrap(ErrValidation, "hard cap reached")
	ErrBelowSubscribeMin    = errorsmod.Wrap(ErrValidation, "less than subscribe min limit")
	ErrAboveSubscribeMax    = errorsmod.Wrap(ErrValidation, "exceed subscribe max limit")
	ErrSlotMismatch         = errorsmod.Wrap(ErrValidation, "slot not match")
	ErrCurrencyTransfer     = errorsmod.Wrap(ErrInsufficientFunds, "currency transfer failed")
	ErrInvalidAmount        = errorsmod.Wrap(ErrValidation, "invalid amount")
	ErrNotPositionOwner     = errorsmod.Wrap(ErrUnauthorized, "caller does not own position")
	ErrPoolIsPermissionless = errorsmod.Wrap(ErrInvalidState, "pool is permissionless")
)

// NAV feed
var (
	ErrInvalidNav        = errorsmod.Wrap(ErrValidation, "invalid nav")
	ErrInvalidNavTime    = errorsmod.Wrap(ErrValidation, "invalid time")
	ErrNotNavManager     = errorsmod.Wrap(ErrUnauthorized, "caller is not nav manager")
	ErrNavNotFound       = errorsmod.Wrap(ErrNotFound, "nav not found")
	ErrNotPoolManager    = errorsmod.Wrap(ErrUnauthorized, "caller is not pool manager")
	ErrInvalidAuthority  = errorsmod.Wrap(ErrUnauthorized, "invalid authority")
	ErrInvalidParams     = errorsmod.Wrap(ErrValidation, "invalid params")
	ErrInvalidAddress    = errorsmod.Wrap(ErrValidation, "invalid address")
	ErrInvalidPoolConfig = errorsmod.Wrap(ErrValidation, "invalid pool config")
)

// Redemption and settlement
var (
	ErrInsufficientValue     = errorsmod.Wrap(ErrInsufficientFunds, "insufficient value")
	ErrSlotNotFound          = errorsmod.Wrap(ErrNotFound, "redeem slot not found")
	ErrRedemptionNotFound    = errorsmod.Wrap(ErrNotFound, "redemption not found")
	ErrSlotClosed            = errorsmod.Wrap(ErrInvalidState, "redeem slot closed")
	ErrSlotNotClosed         = errorsmod.Wrap(ErrInvalidState, "redeem slot not closed")
	ErrRedeemNavAlreadySet   = errorsmod.Wrap(ErrInvalidState, "redeem nav already set")
	ErrRedeemNavNotSet       = errorsmod.Wrap(ErrInvalidState, "redeem nav not set")
	ErrCurrencyMismatch      = errorsmod.Wrap(ErrValidation, "currency not match")
	ErrInsufficientRepayment = errorsmod.Wrap(ErrInsufficientFunds, "insufficient repaid currency")
)
