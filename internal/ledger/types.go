package ledger

// TokenAmount is a parsed SPL token amount in base units.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// accountInfoResult is the result of getAccountInfo; Value is null for missing accounts.
type accountInfoResult struct {
	Context rpcContext   `json:"context"`
	Value   *accountInfo `json:"value"`
}

type accountInfo struct {
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
}

// tokenAmountResult is the result of getTokenSupply and getTokenAccountBalance.
type tokenAmountResult struct {
	Context rpcContext `json:"context"`
	Value   struct {
		Amount         string `json:"amount"`
		Decimals       uint8  `json:"decimals"`
		UIAmountString string `json:"uiAmountString"`
	} `json:"value"`
}
