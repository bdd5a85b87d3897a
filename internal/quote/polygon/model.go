package polygon

// SnapshotResponse is the body of /v3/snapshot/options/{underlying}/{ticker}.
type SnapshotResponse struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Message   string          `json:"message"`
	Results   *SnapshotResult `json:"results"`
}

// SnapshotResult is one option contract snapshot.
type SnapshotResult struct {
	ImpliedVolatility *float64   `json:"implied_volatility"`
	OpenInterest      *int64     `json:"open_interest"`
	Greeks            *Greeks    `json:"greeks"`
	Day               *Day       `json:"day"`
	LastQuote         *LastQuote `json:"last_quote"`
	Details           *Details   `json:"details"`
}

type Greeks struct {
	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Theta *float64 `json:"theta"`
	Vega  *float64 `json:"vega"`
	Rho   *float64 `json:"rho"`
}

type Day struct {
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume"`
}

type LastQuote struct {
	LastPrice float64  `json:"last_price"`
	Midpoint  float64  `json:"midpoint"`
	Bid       *float64 `json:"bid"`
	Ask       *float64 `json:"ask"`
}

type Details struct {
	Ticker         string  `json:"ticker"`
	ContractType   string  `json:"contract_type"`
	ExpirationDate string  `json:"expiration_date"`
	StrikePrice    float64 `json:"strike_price"`
}
