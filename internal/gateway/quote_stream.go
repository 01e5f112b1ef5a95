package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	redisRepo "github.com/yourorg/vesto-server/internal/repository/redis"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type subscription struct {
	client *streamClient
	symbol string
}

// QuoteStream fans loader-published quote refreshes out to websocket
// clients. A single pattern subscription covers every symbol; the hub
// routes each tick to the clients subscribed to that symbol.
type QuoteStream struct {
	clients map[*streamClient]bool
	subs    map[string]map[*streamClient]bool

	register    chan *streamClient
	unregister  chan *streamClient
	subscribe   chan subscription
	unsubscribe chan subscription
	ticks       chan tickMessage

	quotes *redisRepo.QuoteRepo
	logger *slog.Logger
}

type tickMessage struct {
	symbol string
	data   []byte
}

func NewQuoteStream(quotes *redisRepo.QuoteRepo, logger *slog.Logger) *QuoteStream {
	return &QuoteStream{
		clients:     make(map[*streamClient]bool),
		subs:        make(map[string]map[*streamClient]bool),
		register:    make(chan *streamClient, 64),
		unregister:  make(chan *streamClient, 64),
		subscribe:   make(chan subscription, 64),
		unsubscribe: make(chan subscription, 64),
		ticks:       make(chan tickMessage, 256),
		quotes:      quotes,
		logger:      logger,
	}
}

func (s *QuoteStream) Run(ctx context.Context) {
	go s.pumpRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-s.register:
			s.clients[client] = true
		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				for sym, clients := range s.subs {
					delete(clients, client)
					if len(clients) == 0 {
						delete(s.subs, sym)
					}
				}
				close(client.send)
			}
		case sub := <-s.subscribe:
			if _, ok := s.subs[sub.symbol]; !ok {
				s.subs[sub.symbol] = make(map[*streamClient]bool)
			}
			s.subs[sub.symbol][sub.client] = true
			s.sendLastQuote(ctx, sub)
		case sub := <-s.unsubscribe:
			if clients, ok := s.subs[sub.symbol]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(s.subs, sub.symbol)
				}
			}
		case tick := <-s.ticks:
			for client := range s.subs[tick.symbol] {
				select {
				case client.send <- tick.data:
				default:
				}
			}
		}
	}
}

func (s *QuoteStream) pumpRedis(ctx context.Context) {
	pubsub := s.quotes.SubscribeAll(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			symbol := redisRepo.SymbolFromChannel(msg.Channel)
			if symbol == "" {
				continue
			}
			select {
			case s.ticks <- tickMessage{symbol: symbol, data: []byte(msg.Payload)}:
			default:
				s.logger.Warn("quote tick dropped, stream backlogged", "symbol", symbol)
			}
		}
	}
}

// sendLastQuote seeds a fresh subscription with the most recent tick so
// the client does not wait for the next loader run to see a price.
func (s *QuoteStream) sendLastQuote(ctx context.Context, sub subscription) {
	tick, err := s.quotes.GetLastQuote(ctx, sub.symbol)
	if err != nil || tick == nil {
		return
	}
	data, err := json.Marshal(tick)
	if err != nil {
		return
	}
	select {
	case sub.client.send <- data:
	default:
	}
}

type streamClient struct {
	stream *QuoteStream
	conn   *websocket.Conn
	send   chan []byte
}

type streamRequest struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

func (c *streamClient) readPump() {
	defer func() {
		c.stream.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var req streamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		for _, sym := range req.Symbols {
			switch req.Action {
			case "subscribe":
				c.stream.subscribe <- subscription{client: c, symbol: sym}
			case "unsubscribe":
				c.stream.unsubscribe <- subscription{client: c, symbol: sym}
			}
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func ServeQuotes(stream *QuoteStream, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws upgrade failed", "err", err)
			return
		}
		client := &streamClient{
			stream: stream,
			conn:   conn,
			send:   make(chan []byte, 256),
		}
		stream.register <- client
		go client.writePump()
		go client.readPump()
	}
}
