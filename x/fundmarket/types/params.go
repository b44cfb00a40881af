package types

import (
	errorsmod "cosmossdk.io/errors"
)

// LedgerManager registers a value ledger with the market. An empty Manager
// lets any caller create pools on the ledger.
type LedgerManager struct {
	Ledger  string `json:"ledger"`
	Manager string `json:"manager"`
}

// Params holds the market-wide configuration
type Params struct {
	AllowedCurrencies []string        `json:"allowed_currencies"`
	Ledgers           []LedgerManager `json:"ledgers"`
}

// DefaultParams returns empty params; currencies and ledgers are registered by the authority
func DefaultParams() Params {
	return Params{
		AllowedCurrencies: []string{},
		Ledgers:           []LedgerManager{},
	}
}

// Validate checks params for duplicates and empty entries
func (p Params) Validate() error {
	seen := make(map[string]bool)
	for _, denom := range p.AllowedCurrencies {
		if denom == "" {
			return errorsmod.Wrap(ErrInvalidParams, "empty currency")
		}
		if seen[denom] {
			return errorsmod.Wrapf(ErrInvalidParams, "duplicate currency %s", denom)
		}
		seen[denom] = true
	}

	ledgers := make(map[string]bool)
	for _, l := range p.Ledgers {
		if l.Ledger == "" {
			return errorsmod.Wrap(ErrInvalidParams, "empty ledger")
		}
		if ledgers[l.Ledger] {
			return errorsmod.Wrapf(ErrInvalidParams, "duplicate ledger %s", l.Ledger)
		}
		ledgers[l.Ledger] = true
	}
	return nil
}

// IsCurrencyAllowed reports whether denom may back a pool
func (p Params) IsCurrencyAllowed(denom string) bool {
	for _, d := range p.AllowedCurrencies {
		if d == denom {
			return true
		}
	}
	return false
}

// LedgerManagerOf returns the registration of a ledger
func (p Params) LedgerManagerOf(ledger string) (LedgerManager, bool) {
	for _, l := range p.Ledgers {
		if l.Ledger == ledger {
			return l, true
		}
	}
	return LedgerManager{}, false
}

// CanManage reports whether caller may create pools on this ledger
func (l LedgerManager) CanManage(caller string) bool {
	return l.Manager == "" || l.Manager == caller
}
