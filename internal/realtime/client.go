package realtime

import (
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/estate-hub/internal/common/config"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/observability/metrics"
)

type Client struct {
	hub    *Hub
	conn   *gorillaWS.Conn
	handle string
	// token is consumed by the hub on registration.
	token  string
	userID string
	send   chan []byte
	log    *logger.Logger
	cfg    config.WebSocketConfig
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, handle, token string, cfg config.WebSocketConfig, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		handle: handle,
		token:  token,
		send:   make(chan []byte, cfg.SendBufSize),
		log:    log,
		cfg:    cfg,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump only drains control frames; clients have nothing to say beyond pongs.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.hub.touch(c)
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				metrics.WebSocketErrors.WithLabelValues("read").Inc()
				c.log.Warnf("websocket read error handle=%s: %v", c.handle, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				metrics.WebSocketErrors.WithLabelValues("write").Inc()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
