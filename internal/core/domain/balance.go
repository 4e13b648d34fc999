package domain

import (
	"fmt"
	"math/big"
)

// Balance represents a non-negative amount of the chain's native unit in its smallest denomination.
type Balance struct {
	value *big.Int
}

// NewBalanceFromBigInt creates a Balance from a copy of v.
func NewBalanceFromBigInt(v *big.Int) (Balance, error) {
	if v == nil {
		return Balance{}, nil
	}
	if v.Sign() < 0 {
		return Balance{}, fmt.Errorf("balance cannot be negative: %s", v.String())
	}
	return Balance{value: new(big.Int).Set(v)}, nil
}

// ScaleDown divides the balance by 10^decimals, truncating toward zero.
func (b Balance) ScaleDown(decimals uint) Balance {
	if b.value == nil {
		return Balance{}
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return Balance{value: new(big.Int).Quo(b.value, divisor)}
}

// String returns the decimal representation of the balance.
func (b Balance) String() string {
	if b.value == nil {
		return "0"
	}
	return b.value.String()
}
