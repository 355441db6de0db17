package rules

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"orderplanner/src/model"
)

// ErrSymbolNotFound means the venue does not list the requested symbol.
var ErrSymbolNotFound = errors.New("symbol not found on venue")

// MarketData fetches trading rules from the venue.
type MarketData interface {
	FetchTradingRules(ctx context.Context, symbol string) (*model.SymbolTradingRules, error)
}

// Repository caches per-symbol trading rules in memory. Rules change rarely,
// so a successful fetch is kept for the life of the repository. Concurrent
// callers asking for the same uncached symbol share a single upstream fetch.
type Repository struct {
	source MarketData
	log    *logger.Entry

	mu    sync.RWMutex
	cache map[string]*model.SymbolTradingRules
	group singleflight.Group
}

// NewRepository builds a rule repository backed by the given market data source.
func NewRepository(source MarketData) *Repository {
	return &Repository{
		source: source,
		log:    logger.WithField("component", "rules"),
		cache:  make(map[string]*model.SymbolTradingRules),
	}
}

// Get returns the trading rules for symbol, fetching and caching them on the
// first request. Unknown symbols return ErrSymbolNotFound and are not cached,
// so a later listing becomes visible without a restart.
func (r *Repository) Get(ctx context.Context, symbol string) (*model.SymbolTradingRules, error) {
	r.mu.RLock()
	cached, ok := r.cache[symbol]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(symbol, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.cache[symbol]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		rules, err := r.source.FetchTradingRules(ctx, symbol)
		if err != nil {
			if errors.Is(err, ErrSymbolNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
			}
			r.log.WithError(err).WithField("symbol", symbol).Error("fetching trading rules")
			return nil, err
		}

		r.log.WithFields(logger.Fields{
			"symbol":   rules.Symbol,
			"status":   rules.Status,
			"tickSize": rules.TickSize.String(),
			"stepSize": rules.StepSize.String(),
		}).Info("cached trading rules")

		r.mu.Lock()
		r.cache[symbol] = rules
		r.mu.Unlock()
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.SymbolTradingRules), nil
}
