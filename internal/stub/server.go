// Package stub is an in-memory gate backend for local runs and tests.
//
// It serves the same endpoints as the production backend, guarded by HS256
// bearer tokens, plus /metrics and /healthz. Its only eligibility rule is
// that a request is signed out once and then signed in once.
package stub

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/billie-coop/fasttrack/internal/auth"
	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/logging"
)

const (
	defaultPageSize    = 10
	searchLimit        = 20
	defaultEventsPage  = 20
	minEventsPerPage   = 5
	maxEventsPerPage   = 50
	claimsKey          = "claims"
	requestIDKey       = "request_id"
	unauthenticatedMsg = "Unauthenticated."
)

// Config configures the stub server.
type Config struct {
	// Secret verifies bearer tokens. Required.
	Secret []byte
	// Roles allowed to use the staff endpoints. Empty allows any role.
	Roles []string
	// PageSize of the fast-track list.
	PageSize int
	// Latency delays every API response, to exercise stale-response
	// handling in clients.
	Latency time.Duration
	Logger  logging.Logger
	Now     func() time.Time
}

// Server is the HTTP side of the stub.
type Server struct {
	store   *Store
	cfg     Config
	log     logging.Logger
	metrics *metrics
	engine  *gin.Engine
}

// New builds the router over store.
func New(store *Store, cfg Config) *Server {
	if cfg.PageSize < 1 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	s := &Server{store: store, cfg: cfg, log: log, metrics: newMetrics()}
	s.engine = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.metrics.middleware(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	staff := r.Group("/api/staff", s.latency(), s.requireToken())
	{
		ft := staff.Group("/exeat-requests/fast-track")
		ft.GET("/list", s.handleList)
		ft.GET("/search", s.handleSearch)
		ft.POST("/execute", s.handleExecute)

		staff.GET("/gate-events", s.handleGateEvents)
		staff.GET("/gate-events/export", s.handleExport)
	}
	return r
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info(c.Request.Context(), "request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) latency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Latency <= 0 {
			c.Next()
			return
		}
		if err := sleep(c.Request.Context(), s.cfg.Latency); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireToken enforces a valid HS256 bearer token with an allowed role.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": unauthenticatedMsg})
			return
		}
		claims, err := auth.Verify(token, s.cfg.Secret)
		if err != nil {
			s.log.Warn(c.Request.Context(), "rejected token", "request_id", c.GetString(requestIDKey), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": unauthenticatedMsg})
			return
		}
		if !s.roleAllowed(claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "This action is unauthorized."})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (s *Server) roleAllowed(role string) bool {
	if len(s.cfg.Roles) == 0 {
		return true
	}
	for _, r := range s.cfg.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type listQuery struct {
	Type string `form:"type" binding:"required,oneof=sign_out sign_in"`
	Page int    `form:"page" binding:"omitempty,gte=1"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

func (s *Server) handleList(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	page := max(q.Page, 1)

	all := s.store.Eligible(exeat.Mode(q.Type), q.Date)
	size := s.cfg.PageSize
	lastPage := max((len(all)+size-1)/size, 1)

	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))

	c.JSON(http.StatusOK, gin.H{
		"data":         nonNil(all[start:end]),
		"current_page": page,
		"last_page":    lastPage,
		"total":        len(all),
		"per_page":     size,
	})
}

type searchQuery struct {
	Search string `form:"search" binding:"required"`
	Type   string `form:"type" binding:"required,oneof=sign_out sign_in"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	results := s.store.Search(exeat.Mode(q.Type), q.Search, searchLimit)
	c.JSON(http.StatusOK, gin.H{"exeat_requests": nonNil(results)})
}

type executeBody struct {
	RequestIDs []int64 `json:"request_ids" binding:"required,min=1,max=100,dive,gt=0"`
}

func (s *Server) handleExecute(c *gin.Context) {
	var body executeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "request_ids must be a non-empty list of ids."})
		return
	}

	processed := s.store.Execute(body.RequestIDs, s.cfg.Now())
	s.metrics.observeBatch(len(body.RequestIDs), len(processed))

	operator := ""
	if claims, ok := c.Get(claimsKey); ok {
		operator = claims.(*auth.Claims).Operator()
	}
	s.log.Info(c.Request.Context(), "batch executed",
		"request_id", c.GetString(requestIDKey),
		"operator", operator,
		"submitted", len(body.RequestIDs),
		"processed", len(processed))

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
