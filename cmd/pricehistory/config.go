package pricehistory

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DurationStr string `envconfig:"DURATION" default:"1m"`
	Limit       int    `envconfig:"LIMIT" default:"60"`
	Quote       string `envconfig:"QUOTE" default:"USDT"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
