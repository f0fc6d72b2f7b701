package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"LeadPulse/internal/domain/models"
	drepo "LeadPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a LeadStream backed by the ad tracker WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	campaigns      []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new tracker LeadStream.
func New(apiKey, websocketURL string, campaigns []string, reconnectDelay, pingInterval time.Duration) drepo.LeadStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		campaigns:      campaigns,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("tracker connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("tracker: connected")
	return nil
}

// Subscribe subscribes to configured campaigns.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("tracker not connected")
	}
	for _, campaign := range c.campaigns {
		msg := map[string]string{"type": "subscribe", "campaign": campaign}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", campaign, err)
		}
		log.Printf("tracker: subscribed %s", campaign)
	}
	return nil
}

type wsLead struct {
	Campaign string  `json:"campaign"`
	Cost     float64 `json:"cost"`
	Revenue  float64 `json:"revenue"`
	T        int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string   `json:"type"`
	Data []wsLead `json:"data"`
}

// Read streams LeadEvents and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.LeadEvent, <-chan error) {
	events := make(chan *models.LeadEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("tracker conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("tracker read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-lead frames
					continue
				}
				if m.Type != "lead" {
					continue
				}
				for _, d := range m.Data {
					sec := d.T / 1000
					ev := &models.LeadEvent{Campaign: d.Campaign, Timestamp: sec, Cost: d.Cost, Revenue: d.Revenue}
					select {
					case events <- ev:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
