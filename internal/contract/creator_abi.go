package contract

// CreatorToken is the ERC-20 surface plus the bonding-curve market.
//
// Extra function selectors:
//
//	estimateBuyPrice(u256)   → 0x1fa3ecbd
//	calculateBuyPrice(u256)  → 0x58b9a996
//	calculateSellPrice(u256) → 0x2e5e2b3b
//	buy(u256)                → 0xd96a094a
//	sell(u256)               → 0xe4849b32
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          KindCreatorToken,
		Name:        "CreatorToken (ERC-20 + bonding curve)",
		Description: "Per-creator token minted and burned against ShillToken on a quadratic curve.",
		ABI:         creatorTokenABI,
	})
}

var creatorTokenABI = append(append([]ABIEntry{}, erc20ABI...), []ABIEntry{
	// ── Curve read ───────────────────────────────────────────────────────────
	{
		Name: "estimateBuyPrice", Type: "function",
		Inputs:          []ABIParam{{Name: "budget", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "tokens", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "calculateBuyPrice", Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "cost", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "calculateSellPrice", Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "proceeds", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "reserveBalance", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "spotPrice", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	// ── Curve write ──────────────────────────────────────────────────────────
	{
		Name: "buy", Type: "function",
		Inputs:          []ABIParam{{Name: "payment", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "minted", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "sell", Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "proceeds", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "buyWithMinOut", Type: "function",
		Inputs:          []ABIParam{{Name: "payment", Type: "uint256"}, {Name: "minOut", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "minted", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "sellWithMinOut", Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}, {Name: "minOut", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "proceeds", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name:   "Bought",
		Type:   "event",
		Inputs: []ABIParam{{Name: "buyer", Type: "address"}, {Name: "payment", Type: "uint256"}, {Name: "minted", Type: "uint256"}},
	},
	{
		Name:   "Sold",
		Type:   "event",
		Inputs: []ABIParam{{Name: "seller", Type: "address"}, {Name: "amount", Type: "uint256"}, {Name: "proceeds", Type: "uint256"}},
	},
}...)
