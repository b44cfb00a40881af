package types

import (
	"cosmossdk.io/math"
)

// Ledger is a registered value ledger. A ledger holds groupings and
// value-bearing positions; each position belongs to exactly one grouping.
type Ledger struct {
	Ref               string   `json:"ref"`
	Decimals          uint32   `json:"decimals"`
	AllowedCurrencies []string `json:"allowed_currencies,omitempty"`
}

// AllowsCurrency reports whether positions of this ledger may be paid in denom.
// An empty list allows any currency.
func (l Ledger) AllowsCurrency(denom string) bool {
	if len(l.AllowedCurrencies) == 0 {
		return true
	}
	for _, c := range l.AllowedCurrencies {
		if c == denom {
			return true
		}
	}
	return false
}

// Grouping is a class of fungible positions inside a ledger
type Grouping struct {
	Ledger     string `json:"ledger"`
	GroupingID string `json:"grouping_id"`
	Owner      string `json:"owner"`
	Attributes []byte `json:"attributes"`
}

// Position is a value-bearing position
type Position struct {
	Ledger     string   `json:"ledger"`
	PositionID uint64   `json:"position_id"`
	GroupingID string   `json:"grouping_id"`
	Owner      string   `json:"owner"`
	Value      math.Int `json:"value"`
}

// LedgerSequence is the last position id issued by a ledger
type LedgerSequence struct {
	Ledger   string `json:"ledger"`
	Sequence uint64 `json:"sequence"`
}

// GenesisState is the exported ledger state
type GenesisState struct {
	Ledgers   []Ledger         `json:"ledgers"`
	Groupings []Grouping       `json:"groupings"`
	Positions []Position       `json:"positions"`
	Sequences []LedgerSequence `json:"sequences"`
}

// DefaultGenesis returns an empty ledger state
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate checks that every position points to a known ledger and grouping
func (gs GenesisState) Validate() error {
	ledgers := make(map[string]bool, len(gs.Ledgers))
	for _, l := range gs.Ledgers {
		if l.Ref == "" || ledgers[l.Ref] {
			return ErrInvalidLedger.Wrapf("duplicate or empty ledger %q", l.Ref)
		}
		ledgers[l.Ref] = true
	}
	groupings := make(map[string]bool, len(gs.Groupings))
	for _, g := range gs.Groupings {
		if !ledgers[g.Ledger] {
			return ErrLedgerNotFound.Wrap(g.Ledger)
		}
		groupings[g.Ledger+"/"+g.GroupingID] = true
	}
	for _, p := range gs.Positions {
		if !groupings[p.Ledger+"/"+p.GroupingID] {
			return ErrGroupingNotFound.Wrapf("position %d of %s", p.PositionID, p.Ledger)
		}
		if p.Value.IsNil() || !p.Value.IsPositive() {
			return ErrInvalidAmount.Wrapf("position %d of %s", p.PositionID, p.Ledger)
		}
	}
	return nil
}
