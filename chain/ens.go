package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"fractal-bot/errors"
)

// ENS registry and the function selectors the resolution path needs.
const (
	RegistryAddress  = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	selectorResolver = "0x0178b8bf" // resolver(bytes32)
	selectorAddr     = "0x3b3b57de" // addr(bytes32)
	selectorName     = "0x691f3431" // name(bytes32)

	zeroWord = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// Resolver answers name lookups from three layers: the curated tables, the
// TTL cache, and finally the registry plus resolver contracts.
type Resolver struct {
	client *Client
	cache  *Cache
	log    *slog.Logger
}

func NewResolver(client *Client, cache *Cache, log *slog.Logger) *Resolver {
	return &Resolver{client: client, cache: cache, log: log}
}

// Normalize lowercases a name, fixes the frequent comma-for-period typo and
// appends the .eth suffix when missing.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, ",", ".")
	if !strings.HasSuffix(name, ".eth") {
		name += ".eth"
	}
	return name
}

func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	name = Normalize(name)
	if address, ok := KnownNames[name]; ok {
		return address, nil
	}
	if address, ok := r.cache.Get(name); ok {
		r.log.Debug(fmt.Sprintf("Cache hit for %s", name))
		return address, nil
	}

	node := Namehash(name)
	resolver, err := r.lookupAddress(ctx, RegistryAddress, selectorResolver, node)
	if err != nil {
		return "", err
	}
	if resolver == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrNameNotResolved, name)
	}
	address, err := r.lookupAddress(ctx, resolver, selectorAddr, node)
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrNameNotResolved, name)
	}
	r.cache.Set(name, address)
	r.log.Debug(fmt.Sprintf("Resolved %s to %s", name, address))
	return address, nil
}

// ReverseResolve finds a display name for an address: the curated tables
// first, then the <addr>.addr.reverse record.
func (r *Resolver) ReverseResolve(ctx context.Context, address string) (string, error) {
	if !IsAddress(address) {
		return "", fmt.Errorf("%w: %s", errors.ErrBadAddress, address)
	}
	checksummed := Checksum(address)
	if name, ok := KnownAddresses[checksummed]; ok {
		return name, nil
	}
	for name, known := range KnownNames {
		if strings.EqualFold(known, address) {
			return name, nil
		}
	}

	reverseName := strings.ToLower(strings.TrimPrefix(address, "0x")) + ".addr.reverse"
	if name, ok := r.cache.Get(reverseName); ok {
		return name, nil
	}
	node := Namehash(reverseName)
	resolver, err := r.lookupAddress(ctx, RegistryAddress, selectorResolver, node)
	if err != nil {
		return "", err
	}
	if resolver == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrNameNotResolved, checksummed)
	}
	result, err := r.client.Call(ctx, resolver, selectorName+hex.EncodeToString(node[:]))
	if err != nil {
		return "", err
	}
	name, ok := stringFromResult(result)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrNameNotResolved, checksummed)
	}
	r.cache.Set(reverseName, name)
	return name, nil
}

// lookupAddress calls an address-returning view and decodes the word.
// An empty string means the contract answered with nothing.
func (r *Resolver) lookupAddress(ctx context.Context, contract, selector string, node [32]byte) (string, error) {
	result, err := r.client.Call(ctx, contract, selector+hex.EncodeToString(node[:]))
	if err != nil {
		return "", err
	}
	if result == "0x" || result == zeroWord {
		return "", nil
	}
	address, ok := addressFromWord(result)
	if !ok {
		return "", fmt.Errorf("%w: malformed result %s", errors.ErrRPCUnavailable, result)
	}
	return address, nil
}

// stringFromResult decodes a string return value: one word of offset, one
// word of length, then the bytes.
func stringFromResult(result string) (string, bool) {
	raw, err := hex.DecodeString(strings.TrimPrefix(result, "0x"))
	if err != nil || len(raw) < 64 {
		return "", false
	}
	length := new(big.Int).SetBytes(raw[32:64]).Int64()
	if length < 0 || 64+length > int64(len(raw)) {
		return "", false
	}
	return string(raw[64 : 64+length]), true
}
