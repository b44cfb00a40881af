package types

import (
	"cosmossdk.io/math"
)

// Fixed-point bases.
//
// NAV is quoted in currency decimals (1.0 == 1_000_000), position value uses
// 18 decimals and rates are basis points. All products are formed before any
// division and math.Int.Quo truncates toward zero; every operand here is
// non-negative, so truncation equals floor.
const (
	NavDecimals   = 6
	ValueDecimals = 18
	MaxCarryRate  = 10000
)

var (
	NavScale    = math.NewIntWithDecimal(1, NavDecimals)
	ValueScale  = math.NewIntWithDecimal(1, ValueDecimals)
	BasisPoints = math.NewInt(MaxCarryRate)
)

// InitialNav is the seed NAV of every pool and the starting all-time-high
func InitialNav() math.Int {
	return NavScale
}

// ValueForCurrency returns the value minted for a currency payment at nav:
// amount * ValueScale / nav
func ValueForCurrency(amount, nav math.Int) math.Int {
	return amount.Mul(ValueScale).Quo(nav)
}

// CurrencyForValue returns the currency owed for value at nav:
// value * nav / ValueScale
func CurrencyForValue(value, nav math.Int) math.Int {
	return value.Mul(nav).Quo(ValueScale)
}

// CarryResult holds the outcome of pricing a slot
type CarryResult struct {
	CarryAmount math.Int
	PerUnitNav  math.Int
}

// ComputeCarry prices a slot of totalValue at nav against the all-time-high.
// carry = max(0, nav - ath) * totalValue * carryRate / ValueScale / BasisPoints
// perUnit = nav - carry * ValueScale / totalValue when carry is positive.
func ComputeCarry(nav, allTimeHigh, totalValue math.Int, carryRate uint32) CarryResult {
	result := CarryResult{CarryAmount: math.ZeroInt(), PerUnitNav: nav}
	if !nav.GT(allTimeHigh) || !totalValue.IsPositive() || carryRate == 0 {
		return result
	}

	profit := nav.Sub(allTimeHigh)
	carry := profit.Mul(totalValue).Mul(math.NewIntFromUint64(uint64(carryRate))).
		Quo(ValueScale).
		Quo(BasisPoints)
	if !carry.IsPositive() {
		return result
	}

	result.CarryAmount = carry
	result.PerUnitNav = nav.Sub(carry.Mul(ValueScale).Quo(totalValue))
	return result
}

// MaxNav returns the larger of two NAVs
func MaxNav(a, b math.Int) math.Int {
	if a.GT(b) {
		return a
	}
	return b
}
