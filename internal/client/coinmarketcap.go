package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

const cmcAPIKeyHeader = "X-CMC_PRO_API_KEY"

// CoinMarketCapClient handles communication with the CoinMarketCap API, the
// fallback market data source. Every call spends quota, so callers batch all
// missing symbols into one request.
type CoinMarketCapClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCoinMarketCapClient creates a new CoinMarketCap API client
func NewCoinMarketCapClient(cfg config.CoinMarketCapConfig, logger *zap.Logger) *CoinMarketCapClient {
	return &CoinMarketCapClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Quotes retrieves latest quotes for a batch of symbols. The returned map is
// keyed by lower-cased symbol; unresolved symbols are simply absent.
func (c *CoinMarketCapClient) Quotes(ctx context.Context, symbols []string) (map[string]model.CoinRecord, error) {
	if len(symbols) == 0 {
		return map[string]model.CoinRecord{}, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("CoinMarketCap API key is not configured")
	}

	upper := make([]string, 0, len(symbols))
	for _, s := range symbols {
		upper = append(upper, strings.ToUpper(s))
	}

	params := url.Values{}
	params.Add("symbol", strings.Join(upper, ","))
	params.Add("convert", "USD")
	params.Add("skip_invalid", "true")

	reqURL := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(cmcAPIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch quotes from CoinMarketCap",
			zap.Error(err),
			zap.Int("symbols", len(symbols)))
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Endpoint: reqURL}
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("CoinMarketCap API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return nil, fmt.Errorf("CoinMarketCap API returned status code %d", resp.StatusCode)
	}

	var quoteResp model.CMCQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		c.logger.Error("Failed to decode CoinMarketCap response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}

	if quoteResp.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("CoinMarketCap error %d: %s",
			quoteResp.Status.ErrorCode, quoteResp.Status.ErrorMessage)
	}

	records := make(map[string]model.CoinRecord, len(quoteResp.Data))
	for symbol, matches := range quoteResp.Data {
		if len(matches) == 0 {
			continue
		}
		// CoinMarketCap can return several assets per ticker; the first
		// match is the highest ranked one.
		records[strings.ToLower(symbol)] = matches[0].ToCoinRecord()
	}

	c.logger.Debug("Fetched CoinMarketCap quotes",
		zap.Int("requested", len(symbols)),
		zap.Int("resolved", len(records)),
		zap.Int("credits", quoteResp.Status.CreditCount))

	return records, nil
}
