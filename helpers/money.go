package helpers

import "github.com/shopspring/decimal"

// Round2 rounds a balance amount to two decimal places. All wallet
// mutations go through this so repeated float arithmetic cannot drift.
func Round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

// ToMinor converts a major-unit amount to minor units (hundredths).
// Only the WACS adapter boundary deals in minor units.
func ToMinor(f float64) int64 {
	return decimal.NewFromFloat(f).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinor converts minor units (hundredths) to a major-unit amount.
func FromMinor(m int64) float64 {
	v, _ := decimal.NewFromInt(m).Div(decimal.NewFromInt(100)).Float64()
	return v
}
