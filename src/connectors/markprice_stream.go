package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
)

// MarkPriceStream follows a symbol's mark price over the futures websocket.
type MarkPriceStream struct {
	wsBaseURL string
	dialer    *websocket.Dialer
	log       *logger.Entry
}

// NewMarkPriceStream builds a stream against the given websocket base URL.
func NewMarkPriceStream(wsBaseURL string) *MarkPriceStream {
	return &MarkPriceStream{
		wsBaseURL: wsBaseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		log: logger.WithField("component", "markprice-stream"),
	}
}

// Watch subscribes to the 1s mark price stream for symbol and sends each
// update to out until ctx is cancelled or the connection drops. The caller
// owns out; Watch never closes it.
func (s *MarkPriceStream) Watch(ctx context.Context, symbol string, out chan<- decimal.Decimal) error {
	endpoint := fmt.Sprintf("%s/ws/%s@markPrice@1s", s.wsBaseURL, strings.ToLower(symbol))

	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	s.log.WithFields(logger.Fields{
		"symbol":   symbol,
		"endpoint": endpoint,
	}).Info("mark price stream connected")

	// Unblocks the read loop when the context ends.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var event model.BinanceMarkPriceEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			s.log.WithError(err).Warn("skipping malformed stream message")
			continue
		}

		mark, err := decimal.NewFromString(event.MarkPrice)
		if err != nil {
			s.log.WithField("markPrice", event.MarkPrice).Warn("skipping unparseable mark price")
			continue
		}

		select {
		case out <- mark:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
