package fixture

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fundsmith/tradewatch/internal/criteria"
	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// Server exposes a Store over the backend's REST surface.
type Server struct {
	addr   string
	store  *Store
	log    hclog.Logger
	server *http.Server
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	failCount int
	failCode  int
	garbage   int
}

// NewServer creates a fixture server. It does not listen until Start.
func NewServer(addr string, store *Store, logger hclog.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:8081"
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		store:  store,
		log:    logger.Named("fixture"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// FailNext makes the next n requests answer with code.
func (s *Server) FailNext(n, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCount = n
	s.failCode = code
}

// GarbageNext makes the next n requests answer 200 with a body that is not JSON.
func (s *Server) GarbageNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.garbage = n
}

func (s *Server) faults(c *gin.Context) {
	s.mu.Lock()
	code := 0
	garbage := false
	switch {
	case s.failCount > 0:
		s.failCount--
		code = s.failCode
	case s.garbage > 0:
		s.garbage--
		garbage = true
	}
	s.mu.Unlock()

	if code != 0 {
		c.AbortWithStatusJSON(code, gin.H{"error": "injected failure"})
		return
	}
	if garbage {
		c.Data(http.StatusOK, "application/json", []byte("{not json"))
		c.Abort()
		return
	}
	c.Next()
}

// Handler builds the gin engine. Tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.faults)

	api := r.Group("/api")
	api.GET("/imports", s.handleListImports)
	api.GET("/imports/:id", s.handleGetImport)
	api.DELETE("/imports/:id", s.handleDeleteImport)
	api.POST("/imports/:id/consolidate", s.handleConsolidate)
	api.POST("/imports/:id/generate-mxml", s.handleGenerateMXML)
	api.POST("/imports/:id/push-to-murex", s.handlePushToMurex)

	live := api.Group("/live-trades")
	live.POST("/submit", s.handleSubmit)
	live.POST("/process", s.handleProcess)
	live.GET("/pending-count", s.handlePendingCount)
	live.GET("/pending", s.handlePending)
	live.GET("/demo-config", s.handleGetDemoConfig)
	live.PUT("/demo-config", s.handlePutDemoConfig)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.log.Info("listening", "addr", s.addr)

	go s.server.Serve(listener)
	return nil
}

// Addr returns the listen address, resolved after Start.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		code = http.StatusConflict
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleListImports(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ListImports())
}

func (s *Server) handleGetImport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	imp, err := s.store.GetImport(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (s *Server) handleDeleteImport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteImport(id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleConsolidate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Criteria string `json:"criteria" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing criteria field"})
		return
	}
	crit, err := criteria.Parse(req.Criteria)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	imp, err := s.store.Consolidate(id, crit)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.Debug("consolidated", "id", id, "criteria", crit)
	c.JSON(http.StatusOK, imp)
}

func (s *Server) handleGenerateMXML(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	imp, err := s.store.GenerateMXML(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (s *Server) handlePushToMurex(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	imp, err := s.store.PushToMurex(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (s *Server) handleSubmit(c *gin.Context) {
	var lt model.LiveTrade
	if err := c.ShouldBindJSON(&lt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid live trade"})
		return
	}
	c.JSON(http.StatusOK, s.store.SubmitLive(lt))
}

func (s *Server) handleProcess(c *gin.Context) {
	imp := s.store.ProcessPending()
	if imp == nil {
		c.Status(http.StatusOK)
		return
	}
	s.log.Info("processed live trades", "import", imp.ImportName, "trades", imp.OriginalTradeCount)
	c.JSON(http.StatusOK, imp)
}

func (s *Server) handlePendingCount(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PendingCount())
}

func (s *Server) handlePending(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PendingTrades())
}

func (s *Server) handleGetDemoConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.DemoConfig())
}

func (s *Server) handlePutDemoConfig(c *gin.Context) {
	var cfg model.DemoConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid demo config"})
		return
	}
	out, err := s.store.UpdateDemoConfig(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.log.Info("demo config updated", "enabled", out.Enabled, "tps", out.TradesPerSecond)
	c.JSON(http.StatusOK, out)
}
