// REST API CLIENT FOR BINANCE USDT-M FUTURES
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/mapper"
	"orderplanner/src/model"
	"orderplanner/src/rules"
)

// -----------------------------
// CONFIG
// -----------------------------
const (
	// Default retry configuration
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	recvWindowMillis = 5000
)

// -----------------------------
// AUTHENTICATED CLIENT
// -----------------------------
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewClient(apiKey, apiSecret, baseURL string) *Client {
	retryCount := defaultRetryAttempts - 1

	if baseURL == "" {
		baseURL = "https://testnet.binancefuture.com"
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		http:      httpClient,
	}
}

func signQuery(query, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// doPublic performs an unsigned GET against a public market data endpoint.
func (c *Client) doPublic(ctx context.Context, path string, params url.Values) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req = req.SetQueryString(params.Encode())
	}
	return req.Get(path)
}

// doSigned performs an authenticated request. Binance signs the encoded
// query string with HMAC-SHA256 and reads the key from a header.
func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values) (*resty.Response, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindowMillis))

	query := params.Encode()
	query += "&signature=" + signQuery(query, c.apiSecret)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(query)

	return req.Execute(method, path)
}

// apiError decodes the {"code","msg"} error body. ok is false when the body
// is not in that shape.
func apiError(body []byte) (*model.BinanceAPIError, bool) {
	var e model.BinanceAPIError
	if err := json.Unmarshal(body, &e); err != nil || e.Code == 0 {
		return nil, false
	}
	return &e, true
}

// -----------------------------
// CONNECTIVITY
// -----------------------------

// Ping checks REST connectivity.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doPublic(ctx, "/fapi/v1/ping", nil)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("ping: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// ServerTime returns the venue clock, useful for spotting local clock drift
// before signed requests start failing with INVALID_TIMESTAMP.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	resp, err := c.doPublic(ctx, "/fapi/v1/time", nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", err)
	}
	if resp.StatusCode() != 200 {
		return time.Time{}, fmt.Errorf("server time: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}

	var payload struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return time.Time{}, fmt.Errorf("server time: %w", err)
	}
	return time.UnixMilli(payload.ServerTime), nil
}

// -----------------------------
// MARKET DATA
// -----------------------------

// FetchTradingRules pulls the symbol's filters from exchangeInfo.
func (c *Client) FetchTradingRules(ctx context.Context, symbol string) (*model.SymbolTradingRules, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	resp, err := c.doPublic(ctx, "/fapi/v1/exchangeInfo", params)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	if resp.StatusCode() != 200 {
		if e, ok := apiError(resp.Body()); ok && e.Code == -1121 {
			return nil, rules.ErrSymbolNotFound
		}
		return nil, fmt.Errorf("exchange info: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}

	var info model.BinanceExchangeInfo
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}

	for i := range info.Symbols {
		if info.Symbols[i].Symbol == symbol {
			return mapper.MapSymbolRules(&info.Symbols[i])
		}
	}
	return nil, rules.ErrSymbolNotFound
}

// FetchMarkPrice returns the current mark price from the premium index.
func (c *Client) FetchMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	resp, err := c.doPublic(ctx, "/fapi/v1/premiumIndex", params)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("mark price: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Decimal{}, fmt.Errorf("mark price: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}

	var payload model.BinanceMarkPrice
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("mark price: %w", err)
	}
	mark, err := decimal.NewFromString(payload.MarkPrice)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("mark price %q: %w", payload.MarkPrice, err)
	}
	return mark, nil
}

// -----------------------------
// ACCOUNT
// -----------------------------

// FuturesAccountBalance returns the per-asset futures wallet balances.
func (c *Client) FuturesAccountBalance(ctx context.Context) ([]model.BinanceAssetBalance, error) {
	resp, err := c.doSigned(ctx, resty.MethodGet, "/fapi/v2/balance", nil)
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	if resp.StatusCode() != 200 {
		if e, ok := apiError(resp.Body()); ok {
			return nil, fmt.Errorf("account balance: %s: %s", GetErrorMsg(e.Code), e.Msg)
		}
		return nil, fmt.Errorf("account balance: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}

	var balances []model.BinanceAssetBalance
	if err := json.Unmarshal(resp.Body(), &balances); err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	return balances, nil
}

// -----------------------------
// ORDER SUBMISSION
// -----------------------------

// Submit places one primitive order. Failures come back as SubmissionError
// so the coordinator can apply the plan's partial-failure policy.
func (c *Client) Submit(ctx context.Context, symbol string, item model.OrderPlanItem) (*model.OrderResult, error) {
	params, err := orderParams(symbol, item)
	if err != nil {
		return nil, &model.SubmissionError{Kind: model.SubmissionRejected, Reason: err.Error()}
	}

	resp, err := c.doSigned(ctx, resty.MethodPost, "/fapi/v1/order", params)
	if err != nil {
		return nil, &model.SubmissionError{Kind: model.SubmissionTransportUnavailable, Reason: err.Error()}
	}

	status := resp.StatusCode()
	switch {
	case status == 200:
		var ack model.BinanceOrderResponse
		if err := json.Unmarshal(resp.Body(), &ack); err != nil {
			return nil, &model.SubmissionError{Kind: model.SubmissionRejected, Reason: err.Error()}
		}
		logger.WithFields(logger.Fields{
			"symbol":  symbol,
			"type":    item.Kind,
			"orderId": ack.OrderID,
			"status":  ack.Status,
		}).Info("order accepted by venue")
		return mapper.MapOrderResult(&ack), nil

	case status == 429 || status == 418:
		return nil, &model.SubmissionError{Kind: model.SubmissionRateLimited, Reason: string(resp.Body())}

	case status >= 500:
		return nil, &model.SubmissionError{
			Kind:   model.SubmissionTransportUnavailable,
			Reason: fmt.Sprintf("HTTP %d: %s", status, resp.Body()),
		}

	default:
		if e, ok := apiError(resp.Body()); ok {
			if e.Code == -1003 {
				return nil, &model.SubmissionError{Kind: model.SubmissionRateLimited, Reason: e.Msg}
			}
			return nil, &model.SubmissionError{
				Kind:   model.SubmissionRejected,
				Reason: fmt.Sprintf("%s: %s", GetErrorMsg(e.Code), e.Msg),
			}
		}
		return nil, &model.SubmissionError{
			Kind:   model.SubmissionRejected,
			Reason: fmt.Sprintf("HTTP %d: %s", status, resp.Body()),
		}
	}
}

// orderParams builds the /fapi/v1/order form for one plan item.
func orderParams(symbol string, item model.OrderPlanItem) (url.Values, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(item.Side))
	params.Set("quantity", item.Quantity.String())
	params.Set("newClientOrderId", "op-"+uuid.NewString())

	switch item.Kind {
	case model.ItemMarket:
		params.Set("type", "MARKET")
	case model.ItemLimit:
		params.Set("type", "LIMIT")
		params.Set("timeInForce", "GTC")
		params.Set("price", item.Price.String())
	case model.ItemStopTriggerLimit:
		params.Set("type", "STOP")
		params.Set("timeInForce", "GTC")
		params.Set("price", item.Price.String())
		params.Set("stopPrice", item.TriggerPrice.String())
	case model.ItemStopMarket:
		params.Set("type", "STOP_MARKET")
		params.Set("stopPrice", item.TriggerPrice.String())
	case model.ItemTakeProfitMarket:
		params.Set("type", "TAKE_PROFIT_MARKET")
		params.Set("stopPrice", item.TriggerPrice.String())
	default:
		return nil, fmt.Errorf("unsupported plan item kind %q", item.Kind)
	}
	return params, nil
}
