package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"fractal-bot/errors"
)

// TokenAddress is the community token contract.
const TokenAddress = "0x34cE89baA7E4a4B00E17F7E4C0cb97105C216957"

const selectorBalanceOf = "0x70a08231" // balanceOf(address)

var tokenUnit = new(big.Float).SetFloat64(1e18)

// Token reads ERC-20 balances of one contract.
type Token struct {
	client   *Client
	contract string
	log      *slog.Logger
}

func NewToken(client *Client, contract string, log *slog.Logger) *Token {
	if contract == "" {
		contract = TokenAddress
	}
	return &Token{client: client, contract: contract, log: log}
}

func (t *Token) Contract() string {
	return t.contract
}

// BalanceOf returns the holding in whole tokens, the raw value scaled by
// the 18 decimals of the contract.
func (t *Token) BalanceOf(ctx context.Context, address string) (float64, error) {
	if !IsAddress(address) {
		return 0, fmt.Errorf("%w: %s", errors.ErrBadAddress, address)
	}

	data := selectorBalanceOf + strings.Repeat("0", 24) + strings.ToLower(strings.TrimPrefix(address, "0x"))
	result, err := t.client.Call(ctx, t.contract, data)
	if err != nil {
		return 0, err
	}
	if result == "0x" {
		return 0, nil
	}

	raw, ok := new(big.Int).SetString(strings.TrimPrefix(result, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("%w: malformed result %s", errors.ErrRPCUnavailable, result)
	}
	scaled, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), tokenUnit).Float64()
	return scaled, nil
}
