package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	retry "github.com/sethvargo/go-retry"

	"github.com/Vjossaab/commercify-client/pkg/config"
	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/metrics"
)

// frame is the envelope the relay writes per event.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebsocketSource consumes the inventory relay over a websocket. A dropped
// connection is retried with bounded exponential backoff; once the budget is
// exhausted the source goes quiet and the client keeps serving its last
// known stock.
type WebsocketSource struct {
	dispatcher

	cfg  config.FeedConfig
	logg *logger.Logger
	mets *metrics.ReconcileMetrics

	connMu sync.Mutex
	conn   *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWebsocketSource dials the relay and starts the read loop. The passed
// context bounds the initial dial only.
func NewWebsocketSource(ctx context.Context, cfg config.FeedConfig, logg *logger.Logger, mets *metrics.ReconcileMetrics) (*WebsocketSource, error) {
	s := &WebsocketSource{
		cfg:  cfg,
		logg: logg,
		mets: mets,
		done: make(chan struct{}),
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialing inventory feed: %w", err)
	}
	s.conn = conn

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(loopCtx)
	return s, nil
}

// Subscribe registers a handler for an event name.
func (s *WebsocketSource) Subscribe(event enums.FeedEvent, handler Handler) (Unsubscribe, error) {
	return s.subscribe(event, handler)
}

// Close tears the connection down. Idempotent; no handler fires after it
// returns.
func (s *WebsocketSource) Close() error {
	if !s.markClosed() {
		return nil
	}
	s.cancel()

	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	<-s.done
	return err
}

func (s *WebsocketSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (s *WebsocketSource) run(ctx context.Context) {
	defer close(s.done)

	for {
		conn := s.currentConn()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if s.isClosed() || ctx.Err() != nil {
				return
			}
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "inventory feed connection lost")
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil || f.Event == "" {
			s.mets.IncDropped(f.Event, metrics.DropReasonMalformed)
			continue
		}
		event, err := enums.ParseFeedEvent(f.Event)
		if err != nil {
			s.mets.IncDropped(f.Event, metrics.DropReasonUnknown)
			continue
		}
		s.dispatch(event, f.Data)
	}
}

// reconnect re-dials with exponential backoff and a capped attempt budget.
// Returns false when the budget is spent or the source was closed; the read
// loop then exits and the client degrades to stale-inventory mode.
func (s *WebsocketSource) reconnect(ctx context.Context) bool {
	backoff := retry.WithMaxRetries(s.cfg.MaxReconnectAttempts, retry.NewExponential(s.cfg.ReconnectBaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if s.isClosed() {
			return ErrSourceClosed
		}
		s.mets.IncReconnect()
		conn, dialErr := s.dial(ctx)
		if dialErr != nil {
			return retry.RetryableError(dialErr)
		}
		s.setConn(conn)
		return nil
	})
	if err != nil {
		if !s.isClosed() {
			s.logg.Warn(ctx, "inventory feed unavailable, continuing with last known stock")
		}
		return false
	}
	s.logg.Info(ctx, "inventory feed reconnected")
	return true
}

func (s *WebsocketSource) currentConn() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

func (s *WebsocketSource) setConn(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.isClosed() {
		conn.Close()
		return
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
}

