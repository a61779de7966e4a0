package statushttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tradepulse/internal/logger"
	"tradepulse/internal/store"
	"tradepulse/internal/trader"
)

const (
	defaultTradesLimit = 100
	defaultEquityLimit = 500
)

// Server exposes the read-only diagnostics API: portfolio state, trade
// history, equity history, and the equity report page. It never mutates the
// portfolio; all writes stay with the cycle service.
type Server struct {
	addr   string
	store  store.Store
	router *gin.Engine
}

type ServerConfig struct {
	Addr  string
	Store store.Store
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("status http server requires a store")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{addr: cfg.Addr, store: cfg.Store, router: router}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api")
	api.GET("/portfolio", s.handlePortfolio)
	api.GET("/trades", s.handleTrades)
	api.GET("/equity", s.handleEquity)
	router.GET("/report", s.handleReport)

	return s, nil
}

func (s *Server) handlePortfolio(c *gin.Context) {
	p, err := s.store.LoadPortfolio(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          p.ID,
		"balance_usd": p.BalanceUSD,
		"holdings":    p.Holdings,
		"total_value": bookValue(p),
	})
}

func (s *Server) handleTrades(c *gin.Context) {
	limit := queryLimit(c, defaultTradesLimit)
	trades, err := s.store.ListTrades(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trades == nil {
		trades = []trader.TradeRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) handleEquity(c *gin.Context) {
	limit := queryLimit(c, defaultEquityLimit)
	points, err := s.store.ListEquity(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if points == nil {
		points = []trader.EquityPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"equity": points, "count": len(points)})
}

func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// bookValue mirrors the engine's total value: cash plus holdings at entry
// price.
func bookValue(p *trader.Portfolio) float64 {
	total := p.BalanceUSD
	for _, holding := range p.Holdings {
		total += holding.Quantity * holding.EntryPrice
	}
	return total
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
