// Package ibkr downloads Interactive Brokers Flex statements.
package ibkr

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Flex Web Service endpoint.
const DefaultBaseURL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService"

// Flex error codes meaning the statement is still being generated.
var notReadyCodes = map[int]bool{1018: true, 1019: true, 1021: true}

// Client defines the interface for fetching Flex statements from Interactive Brokers.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	RequestFlexReport(ctx context.Context, token string, queryID int) (FlexQueryResponse, error)
}

// FinanceClient requests a Flex statement and polls until it is ready.
type FinanceClient struct {
	httpClient  *http.Client
	baseURL     string
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts int
	log         zerolog.Logger
}

// NewFinanceClient creates a new IBKR client for baseURL.
func NewFinanceClient(baseURL string, timeout time.Duration, log zerolog.Logger) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		backoff:     2 * time.Second,
		maxBackoff:  30 * time.Second,
		maxAttempts: 10,
		log:         log,
	}
}

// RequestFlexReport submits the Flex query and downloads the statement.
func (c *FinanceClient) RequestFlexReport(ctx context.Context, token string, queryID int) (FlexQueryResponse, error) {
	if token == "" || queryID == 0 {
		return FlexQueryResponse{}, errors.New("flex token and query id are required")
	}

	request, err := c.sendRequest(ctx, token, queryID)
	if err != nil {
		return FlexQueryResponse{}, err
	}
	return c.retrieveStatement(ctx, token, request)
}

func (c *FinanceClient) sendRequest(ctx context.Context, token string, queryID int) (FlexRequestResponse, error) {
	queryURL := fmt.Sprintf("%s/SendRequest?t=%s&q=%d&v=3", c.baseURL, url.QueryEscape(token), queryID)

	data, err := c.get(ctx, queryURL)
	if err != nil {
		return FlexRequestResponse{}, err
	}

	var response FlexRequestResponse
	if err := xml.Unmarshal(data, &response); err != nil {
		return FlexRequestResponse{}, fmt.Errorf("failed to decode flex request response: %w", err)
	}

	if response.ErrorCode != nil {
		return response, flexError(response)
	}
	if response.Status == "Fail" || response.URL == "" {
		return response, fmt.Errorf("flex request failed with status %q", response.Status)
	}

	return response, nil
}

func (c *FinanceClient) retrieveStatement(ctx context.Context, token string, request FlexRequestResponse) (FlexQueryResponse, error) {
	queryURL := fmt.Sprintf("%s?t=%s&q=%d&v=3", request.URL, url.QueryEscape(token), request.ReferenceCode)
	backoff := c.backoff

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return FlexQueryResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, c.maxBackoff)
		}

		data, err := c.get(ctx, queryURL)
		if err != nil {
			return FlexQueryResponse{}, err
		}

		var response FlexQueryResponse
		if err := xml.Unmarshal(data, &response); err == nil {
			response.ImportedAt = time.Now().UTC()
			response.QueryID = request.ReferenceCode
			return response, nil
		}

		var errResponse FlexRequestResponse
		if err := xml.Unmarshal(data, &errResponse); err != nil {
			return FlexQueryResponse{}, fmt.Errorf("failed to decode flex statement: %w", err)
		}
		if errResponse.ErrorCode == nil || !notReadyCodes[*errResponse.ErrorCode] {
			return FlexQueryResponse{}, flexError(errResponse)
		}

		c.log.Debug().Int("attempt", attempt+1).Int("code", *errResponse.ErrorCode).Msg("Flex statement not ready yet")
	}

	return FlexQueryResponse{}, fmt.Errorf("flex statement not ready after %d attempts", c.maxAttempts)
}

func (c *FinanceClient) get(ctx context.Context, queryURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flex service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func flexError(r FlexRequestResponse) error {
	msg := ""
	if r.ErrorMessage != nil {
		msg = *r.ErrorMessage
	}
	code := 0
	if r.ErrorCode != nil {
		code = *r.ErrorCode
	}
	return fmt.Errorf("ibkr error %d: %s", code, msg)
}
