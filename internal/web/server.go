package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/heartform/internal/metrics"
	"github.com/Skufu/heartform/internal/session"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

const sessionCookie = "hf_session"

// ReadinessChecker reports whether the inference service has woken up.
type ReadinessChecker interface {
	Ready() bool
}

type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	LimiterIdle    time.Duration // how long an unused rate-limit bucket is kept
	SecureCookie   bool
	Logger         *log.Logger
}

type Server struct {
	store     *session.Store
	upstream  ReadinessChecker
	templates *template.Template
	opts      Options
	logger    *log.Logger
}

func NewServer(store *session.Store, upstream ReadinessChecker, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 10
	}
	if opts.LimiterIdle <= 0 {
		opts.LimiterIdle = 30 * time.Minute
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"ms": func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		store:     store,
		upstream:  upstream,
		templates: templates,
		opts:      opts,
		logger:    opts.Logger,
	}, nil
}

// Router wires middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(s.templates)
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		metrics.Middleware(),
		securityHeaders(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}),
	)

	static, _ := fs.Sub(embeddedFiles, "static")
	router.StaticFS("/static", http.FS(static))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if s.upstream == nil || !s.upstream.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "waking",
				"upstream": "not answering yet",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"upstream": "awake",
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/api/fields", s.handleFields)
	router.GET("/api/state", s.handleState)
	router.GET("/", s.handleIndex)

	limiter := newClientLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst, s.opts.LimiterIdle)
	limited := router.Group("/", limiter.middleware(s.limitKey))
	limited.POST("/predict", s.handlePredict)
	limited.POST("/reset", s.handleReset)
	limited.POST("/fields/:name", s.handleField)
	limited.POST("/select/:name/toggle", s.handleToggle)
	limited.POST("/select/:name/options/:code", s.handleSelect)
	limited.POST("/pointer", s.handlePointer)

	return router
}

// limitKey is the caller's live session id, or the client IP when the cookie
// is missing or names no session.
func (s *Server) limitKey(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		if _, ok := s.store.Get(id); ok {
			return "session:" + id
		}
	}
	return "ip:" + c.ClientIP()
}

// session returns the caller's session, starting a new one (and its wake
// probe) when the cookie is missing or expired.
func (s *Server) session(c *gin.Context) *session.Session {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if sess, ok := s.store.Get(id); ok {
			return sess
		}
	}

	sess := s.store.Create()
	sess.Form.Initialize(c.Request.Context())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", s.opts.SecureCookie, true)
	return sess
}
