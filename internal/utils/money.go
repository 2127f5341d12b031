package utils

import "github.com/shopspring/decimal"

var centsPerReal = decimal.NewFromInt(100)

// CentsToBRL converts integer centavos to a reais decimal for display and
// gateway payloads. The ledger itself only ever holds int64 centavos.
func CentsToBRL(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerReal)
}

// BRLToCents converts a reais decimal to integer centavos, rounding to the
// nearest centavo.
func BRLToCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerReal).Round(0).IntPart()
}
