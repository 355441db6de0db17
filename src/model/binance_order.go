package model

// Raw Binance USD-M futures payloads as they come off the wire. Numeric
// fields stay strings here; the mapper parses them into decimals.

// BinanceExchangeInfo is the /fapi/v1/exchangeInfo response, reduced to the
// parts the rule repository needs.
type BinanceExchangeInfo struct {
	Symbols []BinanceSymbolInfo `json:"symbols"`
}

// BinanceSymbolInfo carries one symbol's status and filter list.
type BinanceSymbolInfo struct {
	Symbol  string                `json:"symbol"`
	Status  string                `json:"status"`
	Filters []BinanceSymbolFilter `json:"filters"`
}

// BinanceSymbolFilter is a single exchange filter. Only LOT_SIZE and
// PRICE_FILTER fields are populated for the types we read.
type BinanceSymbolFilter struct {
	FilterType string `json:"filterType"`
	MinPrice   string `json:"minPrice"`
	MaxPrice   string `json:"maxPrice"`
	TickSize   string `json:"tickSize"`
	MinQty     string `json:"minQty"`
	MaxQty     string `json:"maxQty"`
	StepSize   string `json:"stepSize"`
}

// Filter type names used by the USD-M futures API.
const (
	FilterLotSize     = "LOT_SIZE"
	FilterPriceFilter = "PRICE_FILTER"
)

// BinanceMarkPrice is the /fapi/v1/premiumIndex response.
type BinanceMarkPrice struct {
	Symbol   string `json:"symbol"`
	MarkPrice string `json:"markPrice"`
	Time     int64  `json:"time"`
}

// BinanceOrderResponse is the /fapi/v1/order acknowledgement.
type BinanceOrderResponse struct {
	OrderID       int64  `json:"orderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	StopPrice     string `json:"stopPrice"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	UpdateTime    int64  `json:"updateTime"`
}

// BinanceAPIError is the {"code":…,"msg":…} error body.
type BinanceAPIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// BinanceAssetBalance is one entry of the /fapi/v2/balance response.
type BinanceAssetBalance struct {
	Asset            string `json:"asset"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
}

// BinanceMarkPriceEvent is one message of the <symbol>@markPrice stream.
type BinanceMarkPriceEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	MarkPrice string `json:"p"`
}
