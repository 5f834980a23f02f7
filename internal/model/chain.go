package model

import (
	"errors"
	"fmt"
	"strings"
)

// Chain is a blockchain network identifier from a fixed supported set.
// The order of SupportedChains defines display order only, never priority.
type Chain string

// Supported chain identifiers.
const (
	ChainEthereum    Chain = "ethereum"
	ChainBitcoin     Chain = "bitcoin"
	ChainSolana      Chain = "solana"
	ChainTron        Chain = "tron"
	ChainBSC         Chain = "bsc"
	ChainPolygon     Chain = "polygon"
	ChainArbitrumOne Chain = "arbitrum_one"
	ChainOptimism    Chain = "optimism"
	ChainBase        Chain = "base"
	ChainAvalanche   Chain = "avalanche"
	ChainTON         Chain = "ton"
	ChainDogecoin    Chain = "dogecoin"
	ChainLinea       Chain = "linea"
	ChainMantle      Chain = "mantle"
	ChainBlast       Chain = "blast"
	ChainFlare       Chain = "flare"
	ChainManta       Chain = "manta"
	ChainZKSync      Chain = "zksync"
	ChainSonic       Chain = "sonic"
)

// supportedChains is kept unexported so callers cannot reorder it.
var supportedChains = []Chain{
	ChainEthereum,
	ChainBitcoin,
	ChainSolana,
	ChainTron,
	ChainBSC,
	ChainPolygon,
	ChainArbitrumOne,
	ChainOptimism,
	ChainBase,
	ChainAvalanche,
	ChainTON,
	ChainDogecoin,
	ChainLinea,
	ChainMantle,
	ChainBlast,
	ChainFlare,
	ChainManta,
	ChainZKSync,
	ChainSonic,
}

// ErrUnsupportedChain is returned by ParseChain for names outside the supported set.
var ErrUnsupportedChain = errors.New("unsupported chain")

// SupportedChains returns a copy of the supported chain set in display order.
func SupportedChains() []Chain {
	out := make([]Chain, len(supportedChains))
	copy(out, supportedChains)
	return out
}

// IsSupported reports whether c is one of the supported chains.
func (c Chain) IsSupported() bool {
	for _, s := range supportedChains {
		if s == c {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (c Chain) String() string {
	return string(c)
}

// ParseChain normalizes a user supplied chain name and validates it.
func ParseChain(name string) (Chain, error) {
	c := Chain(strings.ToLower(strings.TrimSpace(name)))
	if !c.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, name)
	}
	return c, nil
}

// ParseChains parses a list of chain names, dropping duplicates while
// preserving first-seen order. Empty entries are ignored.
func ParseChains(names []string) ([]Chain, error) {
	seen := make(map[Chain]bool, len(names))
	chains := make([]Chain, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := ParseChain(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		chains = append(chains, c)
	}
	return chains, nil
}
