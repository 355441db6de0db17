package connectors

import "fmt"

// BinanceErrorCodes maps Binance futures API error codes to their names.
var BinanceErrorCodes = map[int]string{
	-1000: "UNKNOWN",                          // Unknown error while processing the request
	-1001: "DISCONNECTED",                     // Internal error, unable to process
	-1002: "UNAUTHORIZED",                     // Request not authorized
	-1003: "TOO_MANY_REQUESTS",                // Request weight limit exceeded
	-1013: "INVALID_MESSAGE",                  // Filter failure (PRICE_FILTER / LOT_SIZE)
	-1021: "INVALID_TIMESTAMP",                // Timestamp outside the recvWindow
	-1022: "INVALID_SIGNATURE",                // Signature for this request is not valid
	-1102: "MANDATORY_PARAM_EMPTY_OR_MALFORMED",
	-1111: "BAD_PRECISION",                    // Precision over the maximum for this asset
	-1116: "INVALID_ORDER_TYPE",
	-1117: "INVALID_SIDE",
	-1121: "BAD_SYMBOL",                       // Invalid symbol
	-2010: "NEW_ORDER_REJECTED",
	-2013: "NO_SUCH_ORDER",
	-2014: "BAD_API_KEY_FMT",
	-2015: "REJECTED_MBX_KEY",                 // Invalid API key, IP, or permissions
	-2018: "BALANCE_NOT_SUFFICIENT",
	-2019: "MARGIN_NOT_SUFFICIENT",
	-2020: "UNABLE_TO_FILL",
	-2021: "ORDER_WOULD_IMMEDIATELY_TRIGGER",  // Stop price rejected against mark price
	-2022: "REDUCE_ONLY_REJECT",
	-4003: "QUANTITY_LESS_THAN_ZERO",
	-4004: "QUANTITY_LESS_THAN_MIN_QUANTITY",
	-4014: "PRICE_NOT_INCREASED_BY_TICK_SIZE", // Price not a multiple of the tick size
	-4164: "MIN_NOTIONAL",                     // Order notional below the minimum
}

// GetErrorMsg returns the name for a Binance error code, or a generic
// placeholder when the code is unknown.
func GetErrorMsg(code int) string {
	if msg, ok := BinanceErrorCodes[code]; ok {
		return msg
	}
	return fmt.Sprintf("UNKNOWN_BINANCE_ERROR_%d", code)
}
