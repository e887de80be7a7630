package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

const apiKeyHeader = "x-cg-demo-api-key"

// CoinGeckoClient handles communication with the CoinGecko API, the primary
// market data source.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	perPage    int
	topPages   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko API client
func NewCoinGeckoClient(cfg config.CoinGeckoConfig, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		perPage:  cfg.PerPage,
		topPages: cfg.TopPages,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// ListMarkets retrieves the full top-N market listing, page by page. Symbols
// are matched against this listing client-side; the API is never queried for
// individual symbols.
func (c *CoinGeckoClient) ListMarkets(ctx context.Context) ([]model.CoinRecord, error) {
	records := make([]model.CoinRecord, 0, c.perPage*c.topPages)

	for page := 1; page <= c.topPages; page++ {
		params := url.Values{}
		params.Add("vs_currency", "usd")
		params.Add("order", "market_cap_desc")
		params.Add("per_page", strconv.Itoa(c.perPage))
		params.Add("page", strconv.Itoa(page))
		params.Add("price_change_percentage", "1h,24h,7d")

		reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())

		var markets []model.GeckoMarket
		if err := c.getJSON(ctx, reqURL, &markets); err != nil {
			return nil, err
		}

		for _, m := range markets {
			records = append(records, m.ToCoinRecord())
		}

		// A short page means the listing ended early.
		if len(markets) < c.perPage {
			break
		}
	}

	c.logger.Debug("Fetched CoinGecko market listing", zap.Int("count", len(records)))
	return records, nil
}

// GetCoin retrieves a single coin's detail record.
func (c *CoinGeckoClient) GetCoin(ctx context.Context, id string) (*model.CoinDetail, error) {
	params := url.Values{}
	params.Add("localization", "false")
	params.Add("tickers", "false")
	params.Add("community_data", "false")
	params.Add("developer_data", "false")

	reqURL := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, url.PathEscape(id), params.Encode())

	var detail model.GeckoCoinDetail
	if err := c.getJSON(ctx, reqURL, &detail); err != nil {
		return nil, err
	}

	homepage := ""
	if len(detail.Links.Homepage) > 0 {
		homepage = detail.Links.Homepage[0]
	}

	lastUpdated, _ := time.Parse(time.RFC3339, detail.LastUpdated)

	return &model.CoinDetail{
		CoinRecord: model.CoinRecord{
			ID:                detail.ID,
			Symbol:            detail.Symbol,
			Name:              detail.Name,
			Price:             detail.MarketData.CurrentPrice["usd"],
			MarketCap:         detail.MarketData.MarketCap["usd"],
			Volume24h:         detail.MarketData.TotalVolume["usd"],
			PercentChange1h:   detail.MarketData.PriceChangePct1h["usd"],
			PercentChange24h:  detail.MarketData.PriceChangePct24h["usd"],
			PercentChange7d:   detail.MarketData.PriceChangePct7d["usd"],
			CirculatingSupply: detail.MarketData.CirculatingSupply,
			TotalSupply:       detail.MarketData.TotalSupply,
			MaxSupply:         detail.MarketData.MaxSupply,
			Source:            model.SourcePrimary,
		},
		Description: detail.Description.En,
		Homepage:    homepage,
		Image:       detail.Image.Large,
		MarketRank:  detail.MarketCapRank,
		ATH:         detail.MarketData.ATH["usd"],
		ATL:         detail.MarketData.ATL["usd"],
		LastUpdated: lastUpdated,
	}, nil
}

// GetOHLC retrieves candlestick history for a coin. CoinGecko returns rows of
// [timestamp_ms, open, high, low, close].
func (c *CoinGeckoClient) GetOHLC(ctx context.Context, id string, days int) ([]model.OHLC, error) {
	params := url.Values{}
	params.Add("vs_currency", "usd")
	params.Add("days", strconv.Itoa(days))

	reqURL := fmt.Sprintf("%s/coins/%s/ohlc?%s", c.baseURL, url.PathEscape(id), params.Encode())

	var raw [][]float64
	if err := c.getJSON(ctx, reqURL, &raw); err != nil {
		return nil, err
	}

	candles := make([]model.OHLC, 0, len(raw))
	for i, row := range raw {
		if len(row) < 5 {
			c.logger.Warn("Skipping malformed OHLC row",
				zap.Int("index", i),
				zap.String("coin_id", id))
			continue
		}
		candles = append(candles, model.OHLC{
			Time:  time.UnixMilli(int64(row[0])),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}

	return candles, nil
}

// ListCategories retrieves the category listing.
func (c *CoinGeckoClient) ListCategories(ctx context.Context) ([]model.Category, error) {
	reqURL := fmt.Sprintf("%s/coins/categories", c.baseURL)

	var raw []model.GeckoCategory
	if err := c.getJSON(ctx, reqURL, &raw); err != nil {
		return nil, err
	}

	categories := make([]model.Category, 0, len(raw))
	for _, g := range raw {
		categories = append(categories, model.Category{
			ID:                 g.ID,
			Name:               g.Name,
			MarketCap:          g.MarketCap,
			MarketCapChange24h: g.MarketCapChange24h,
			Volume24h:          g.Volume24h,
			Top3Coins:          g.Top3Coins,
		})
	}

	return categories, nil
}

// GetCategoryCoins retrieves one category's member coins via the markets
// listing filtered server-side by category id.
func (c *CoinGeckoClient) GetCategoryCoins(ctx context.Context, categoryID string) ([]model.CoinRecord, error) {
	params := url.Values{}
	params.Add("vs_currency", "usd")
	params.Add("category", categoryID)
	params.Add("order", "market_cap_desc")
	params.Add("per_page", strconv.Itoa(c.perPage))
	params.Add("price_change_percentage", "1h,24h,7d")

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())

	var markets []model.GeckoMarket
	if err := c.getJSON(ctx, reqURL, &markets); err != nil {
		return nil, err
	}

	records := make([]model.CoinRecord, 0, len(markets))
	for _, m := range markets {
		records = append(records, m.ToCoinRecord())
	}

	return records, nil
}

// getJSON performs a GET and decodes the JSON body into out. A 429 is
// returned as *RateLimitError so callers can apply their rate-limit policy.
func (c *CoinGeckoClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch from CoinGecko", zap.Error(err), zap.String("url", reqURL))
		return fmt.Errorf("failed to fetch from CoinGecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Endpoint: reqURL}
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("CoinGecko API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return fmt.Errorf("CoinGecko API returned status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode CoinGecko response", zap.Error(err))
		return fmt.Errorf("failed to decode CoinGecko response: %w", err)
	}

	return nil
}
