package model

// Stock is an underlying on the watchlist together with the option contracts
// tracked for it. Price fields are display strings, as the app persisted them.
type Stock struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	CurrentPrice  string          `json:"currentPrice"`
	Change        string          `json:"change"`
	ChangePercent string          `json:"changePercent"`
	IsUp          bool            `json:"isUp"`
	Contracts     []WatchContract `json:"contracts"`
	Details       *StockDetails   `json:"details,omitempty"`
}

// StockDetails holds the rolling price statistics shown on the stock card.
type StockDetails struct {
	FiveDayAvg      string `json:"fiveDayAvg"`
	FiveDayLow      string `json:"fiveDayLow"`
	FiveDayHigh     string `json:"fiveDayHigh"`
	FiftyTwoWeekAvg string `json:"fiftyTwoWeekAvg"`
	FiftyTwoWeekLow string `json:"fiftyTwoWeekLow"`
}

// WatchContract is an option contract on the watchlist. Its ID is the same
// identifier the ledger uses for the matching ContractGroup.
type WatchContract struct {
	ID             string     `json:"id"`
	Symbol         string     `json:"symbol"`
	StrikePrice    string     `json:"strikePrice"`
	ExpirationDate string     `json:"expirationDate"`
	Premium        string     `json:"premium,omitempty"`
	OptionType     OptionType `json:"type"`
	Greeks         *Greeks    `json:"greeks,omitempty"`
}

// Greeks are passed through from the quote provider unmodified.
type Greeks struct {
	Delta             *float64 `json:"delta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	Rho               *float64 `json:"rho,omitempty"`
	ImpliedVolatility *float64 `json:"impliedVolatility,omitempty"`
}

// FindContract returns the index of the contract with the given id, or -1.
func (s *Stock) FindContract(contractID string) int {
	for i, c := range s.Contracts {
		if c.ID == contractID {
			return i
		}
	}
	return -1
}
