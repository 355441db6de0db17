package connectors

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the Binance USD-M futures credentials and endpoints. The
// defaults point at the futures testnet so a missing configuration can never
// trade real funds.
type Config struct {
	APIKey    string `envconfig:"BINANCE_API_KEY"`
	APISecret string `envconfig:"BINANCE_API_SECRET"`
	BaseURL   string `envconfig:"BINANCE_BASE_URL" default:"https://testnet.binancefuture.com"`
	WSBaseURL string `envconfig:"BINANCE_WS_URL" default:"wss://stream.binancefuture.com"`
}

// GetConfig reads the connector configuration from the environment.
func GetConfig() Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
