package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/use-agent/seatrack/gateway"
	"github.com/use-agent/seatrack/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Task submitters are internal services; origin policy is handled at
	// the network layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is one inbound client message. A message either carries a batch
// in Tasks or a single task in the flat fields.
type wsMessage struct {
	Action         string              `json:"action"`
	Tasks          []models.LookupTask `json:"tasks"`
	TrackingNumber string              `json:"tracking_number"`
	Code           string              `json:"code"`
	Type           string              `json:"type"`
}

// wsError is the shape of protocol-level failures (malformed JSON, unknown
// action). Task-level failures travel as ordinary result envelopes.
type wsError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// wsBatchDone closes out a batch on the socket after every envelope has been
// delivered.
type wsBatchDone struct {
	Event   string              `json:"event"`
	Summary models.BatchSummary `json:"summary"`
}

// WS returns the handler for GET /api/v1/ws, the streaming lookup transport.
//
// Each envelope is pushed the moment its task completes, so a slow carrier
// never delays a fast one. When the client disconnects, the sessions this
// connection caused are torn down; there is nowhere left to deliver results
// to. Sessions owned by other clients are untouched.
func WS(g *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("ws: upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		scope := g.NewScope()
		defer scope.Close()

		slog.Info("ws: client connected", "remote", conn.RemoteAddr().String())

		// One writer at a time; gorilla connections do not allow
		// concurrent writes.
		var writeMu sync.Mutex
		send := func(v any) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(v); err != nil {
				slog.Warn("ws: write failed", "error", err)
			}
		}

		var batches sync.WaitGroup
		defer batches.Wait()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn("ws: client disconnected unexpectedly", "error", err)
				} else {
					slog.Info("ws: client disconnected")
				}
				return
			}

			var msg wsMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				send(wsError{Status: "error", Message: "Invalid JSON format in message"})
				continue
			}

			if msg.Action != "scrape" {
				send(wsError{Status: "error", Message: "Invalid action"})
				continue
			}

			if len(msg.Tasks) > 0 {
				tasks := msg.Tasks
				batches.Add(1)
				go func() {
					defer batches.Done()
					summary := scope.HandleBatch(c.Request.Context(), tasks, func(e *models.ResultEnvelope) {
						send(e)
					})
					send(wsBatchDone{Event: "batch_complete", Summary: summary})
				}()
				continue
			}

			task := models.LookupTask{
				TrackingNumber: msg.TrackingNumber,
				CarrierCode:    msg.Code,
				ShipmentType:   msg.Type,
			}
			send(scope.Handle(c.Request.Context(), task))
		}
	}
}
