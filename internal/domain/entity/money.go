package entity

import "github.com/shopspring/decimal"

// MoneyScale decimales de los importes persistidos (NUMERIC(14,2)).
const MoneyScale int32 = 2

// RoundMoney lleva d a la escala de los importes; medio hacia arriba, como PostgreSQL.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
