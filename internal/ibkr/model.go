package ibkr

import (
	"encoding/xml"
	"strings"
	"time"
)

// FlexRequestResponse is the answer to a SendRequest call. On success it holds
// the reference code and URL the statement is downloaded from.
type FlexRequestResponse struct {
	XMLName       xml.Name `xml:"FlexStatementResponse"`
	Timestamp     string   `xml:"timestamp,attr"`
	Status        string   `xml:"Status"`        // Success or Fail
	ReferenceCode int      `xml:"ReferenceCode"` // Code to download the requested statement
	URL           string   `xml:"Url"`           // URL to download statement
	ErrorCode     *int     `xml:"ErrorCode"`     // If error, the error code
	ErrorMessage  *string  `xml:"ErrorMessage"`  // If error, the verbose message
}

// FlexQueryResponse is a downloaded Flex statement. Only the trades section
// is decoded.
type FlexQueryResponse struct {
	XMLName        xml.Name `xml:"FlexQueryResponse"`
	QueryName      string   `xml:"queryName,attr"`
	Type           string   `xml:"type,attr"`
	FlexStatements struct {
		Count         string `xml:"count,attr"`
		FlexStatement struct {
			AccountID     string `xml:"accountId,attr"`
			FromDate      string `xml:"fromDate,attr"`
			ToDate        string `xml:"toDate,attr"`
			WhenGenerated string `xml:"whenGenerated,attr"`
			Trades        struct {
				Trade []Trade `xml:"Trade"`
			} `xml:"Trades"`
		} `xml:"FlexStatement"`
	} `xml:"FlexStatements"`
	ImportedAt time.Time `xml:"-"`
	QueryID    int       `xml:"-"`
}

// Trades returns the trades of the statement.
func (r FlexQueryResponse) Trades() []Trade {
	return r.FlexStatements.FlexStatement.Trades.Trade
}

// Trade is one execution row of the Trades section.
type Trade struct {
	AssetCategory      string  `xml:"assetCategory,attr"` // STK, OPT, ...
	Currency           string  `xml:"currency,attr"`
	Symbol             string  `xml:"symbol,attr"`
	Description        string  `xml:"description,attr"`
	UnderlyingSymbol   string  `xml:"underlyingSymbol,attr"`
	Strike             float64 `xml:"strike,attr"`
	Expiry             string  `xml:"expiry,attr"`
	PutCall            string  `xml:"putCall,attr"` // C or P
	Multiplier         float64 `xml:"multiplier,attr"`
	Quantity           float64 `xml:"quantity,attr"` // negative for sells
	TradePrice         float64 `xml:"tradePrice,attr"`
	IbCommission       float64 `xml:"ibCommission,attr"`
	TransactionID      int64   `xml:"transactionID,attr"`
	TradeDate          string  `xml:"tradeDate,attr"`
	BuySell            string  `xml:"buySell,attr"`            // BUY, SELL, BUY (Ca.), SELL (Ca.)
	OpenCloseIndicator string  `xml:"openCloseIndicator,attr"` // O or C
}

// IsOption reports whether the row is an equity or index option execution.
func (t Trade) IsOption() bool {
	return t.AssetCategory == "OPT"
}

// IsCancellation reports whether the row reverses an earlier execution.
func (t Trade) IsCancellation() bool {
	return strings.Contains(t.BuySell, "(Ca.)")
}
