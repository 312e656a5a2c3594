package predict

import (
	"regexp"
	"strconv"
)

// richAddressPattern matches CAIP-style rich addresses such as
// "eip155:1:0xdAC1...".
var richAddressPattern = regexp.MustCompile(`^eip155:(\d+):`)

var chainNames = map[int]string{
	1:     "Ethereum",
	10:    "Optimism",
	56:    "BNB Smart Chain",
	137:   "Polygon",
	42161: "Arbitrum",
	43114: "Avalanche",
}

// explorerDomains maps chain IDs to the block-explorer domain whose
// label pages must be excluded from the knowledge source's search, so
// predictions cannot trivially read back curated tags.
var explorerDomains = map[int]string{
	1:     "etherscan.io",
	10:    "optimistic.etherscan.io",
	56:    "bscscan.com",
	100:   "gnosisscan.io",
	137:   "polygonscan.com",
	250:   "ftmscan.com",
	324:   "era.zksync.network",
	1285:  "moonriver.moonscan.io",
	8453:  "basescan.org",
	42161: "arbiscan.io",
	43114: "snowscan.xyz",
}

func chainID(richAddress string) (int, bool) {
	m := richAddressPattern.FindStringSubmatch(richAddress)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ChainName resolves the chain name encoded in a rich address, or
// "Unknown" when the address is not in rich form or the chain is not
// recognized.
func ChainName(richAddress string) string {
	id, ok := chainID(richAddress)
	if !ok {
		return "Unknown"
	}
	if name, ok := chainNames[id]; ok {
		return name
	}
	return "Unknown"
}

// ExcludedExplorerDomains returns the explorer domains to keep out of
// the knowledge source's search for this address, or nil when none is
// known for the chain.
func ExcludedExplorerDomains(richAddress string) []string {
	id, ok := chainID(richAddress)
	if !ok {
		return nil
	}
	domain, ok := explorerDomains[id]
	if !ok {
		return nil
	}
	return []string{domain}
}
