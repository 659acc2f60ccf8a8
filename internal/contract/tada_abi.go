package contract

// TaDa is the platform contract: creator-token factory and faucet.
//
// Function selectors:
//
//	token()                         → 0xfc0c546a
//	hasFaucetAddress(address)       → 0xffd8df5e
//	getCreatorToken()               → 0x5b43b10e
//	makeCreatorToken(string,string) → 0xf21ad35d
//	faucetToken(address,string)     → 0x950b36cb
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          KindTaDa,
		Name:        "TaDa (factory + faucet)",
		Description: "Deploys creator tokens and pays new users from the ShillToken faucet.",
		ABI:         tadaABI,
	})
}

var tadaABI = []ABIEntry{
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "token", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "address"}},
		StateMutability: "view",
	},
	{
		Name: "owner", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "address"}},
		StateMutability: "view",
	},
	{
		Name: "faucetAmount", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "hasFaucetAddress", Type: "function",
		Inputs:          []ABIParam{{Name: "account", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "view",
	},
	{
		Name: "getCreatorToken", Type: "function",
		Inputs: nil,
		Outputs: []ABIParam{
			{Name: "names", Type: "string[]"},
			{Name: "symbols", Type: "string[]"},
			{Name: "tokens", Type: "address[]"},
		},
		StateMutability: "view",
	},
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "makeCreatorToken", Type: "function",
		Inputs:          []ABIParam{{Name: "name", Type: "string"}, {Name: "symbol", Type: "string"}},
		Outputs:         []ABIParam{{Name: "", Type: "address"}},
		StateMutability: "nonpayable",
	},
	{
		Name: "faucetToken", Type: "function",
		Inputs:          []ABIParam{{Name: "recipient", Type: "address"}, {Name: "googleId", Type: "string"}},
		Outputs:         nil,
		StateMutability: "nonpayable",
	},
}
