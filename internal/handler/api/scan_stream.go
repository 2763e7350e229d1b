package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	"github.com/quantfra/swingdesk/internal/middleware"
	"github.com/quantfra/swingdesk/internal/usecase"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsRequestMax = 1 << 20
)

// ScanStreamHandler streams scan progress over a websocket. The client
// sends one ScanRequest frame; the server answers with progress frames
// and a final summary frame, then closes.
type ScanStreamHandler struct {
	scanner  *usecase.Scanner
	metrics  domrepo.Metrics
	upgrader websocket.Upgrader
	l        *applogger.Logger
}

func NewScanStreamHandler(scanner *usecase.Scanner, metrics domrepo.Metrics) *ScanStreamHandler {
	return &ScanStreamHandler{
		scanner: scanner,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// SetLogger injects a structured logger.
func (h *ScanStreamHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *ScanStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/scan", h.Stream)
}

type wsFrame struct {
	Type     string               `json:"type"`
	Progress *models.ScanProgress `json:"progress,omitempty"`
	Summary  *models.ScanSummary  `json:"summary,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// wsSink serializes frame writes; gorilla conns allow one writer.
type wsSink struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSink) write(f wsFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(f)
}

func (s *wsSink) Send(ev models.ScanProgress) error {
	return s.write(wsFrame{Type: "progress", Progress: &ev})
}

func (h *ScanStreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(wsRequestMax)

	var req models.ScanRequest
	if err := conn.ReadJSON(&req); err != nil {
		if h.l != nil {
			h.l.Warn("scan stream bad request", applogger.Error(err))
		}
		return nil
	}
	sink := &wsSink{conn: conn}
	if len(req.Markets) == 0 {
		_ = sink.write(wsFrame{Type: "error", Error: "at least one market required"})
		return nil
	}

	pipeline := middleware.NewProgressPipeline(sink, h.metrics,
		middleware.WithMaxEPS(25),
		middleware.WithBufferSize(256),
	)
	pipeline.Start()
	defer pipeline.Stop()

	ctx := c.Request().Context()
	summary, err := h.scanner.Scan(ctx, usecase.ScanParams{
		Markets:   req.Markets,
		Threshold: req.Threshold,
		TopK:      req.TopK,
		Lookback:  req.Lookback,
		Interval:  domrepo.NormalizeInterval(req.Interval),
	}, func(ev models.ScanProgress) {
		_ = pipeline.Push(ev)
	})
	if err != nil {
		_ = sink.write(wsFrame{Type: "error", Error: err.Error()})
		return nil
	}
	if err := sink.write(wsFrame{Type: "summary", Summary: summary}); err != nil && h.l != nil {
		h.l.Warn("scan stream summary write failed", applogger.Error(err))
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait),
	)
	return nil
}
