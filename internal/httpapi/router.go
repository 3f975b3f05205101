// Package httpapi implements the HTTP surface of the recruiter service.
//
// Routes:
//
//	GET    /health
//	POST   /api/auth/sign-in | sign-up | sign-out
//	GET    /api/auth/me
//	GET    /api/job_offers                       → caller's offers
//	POST   /api/job_offers                       → create offer
//	GET    /api/job_offers/:id                   → one offer
//	PATCH  /api/job_offers/:id                   → partial update
//	DELETE /api/job_offers/:id
//	PUT    /api/job_offers/:id/keywords          → replace keywords, rescore CVs
//	GET    /api/job_offers/:id/stats
//	GET    /api/job_offers/:id/cvs[?status=]
//	POST   /api/job_offers/:id/cvs
//	PATCH  /api/job_offers/:id/cvs/:cv_id        → accept / reject
//	GET    /, /login, /register, /reset-password, /update-password,
//	       /dashboard, /offers/:id               → page data as JSON
//
// The job offer collection is also mounted at /job_offers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/auth"
	"hrhelper/recruiter-service/internal/recruiting"
)

// Options configures the router.
type Options struct {
	Version        string
	AllowedOrigins []string
	SecureCookies  bool
}

// Handler holds shared dependencies.
type Handler struct {
	svc  *recruiting.Service
	id   auth.Identity
	log  *zap.Logger
	opts Options
}

// NewHandler returns a configured Handler.
func NewHandler(svc *recruiting.Service, id auth.Identity, log *zap.Logger, opts Options) *Handler {
	return &Handler{svc: svc, id: id, log: log, opts: opts}
}

// Router builds the gin engine with every route mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log), h.cors())
	r.Use(auth.Middleware(h.id, h.log))

	r.GET("/health", h.health)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/sign-in", h.signIn)
		authGroup.POST("/sign-up", h.signUp)
		authGroup.POST("/sign-out", h.signOut)
		authGroup.GET("/me", h.me)
	}

	h.mountOffers(r.Group("/api/job_offers"))
	h.mountOffers(r.Group("/job_offers"))

	r.GET("/", h.root)
	for _, p := range []string{"/login", "/register", "/reset-password", "/update-password"} {
		r.GET(p, h.publicPage)
	}
	r.GET("/dashboard", h.dashboard)
	r.GET("/offers/:id", h.offerPage)

	return r
}

func (h *Handler) mountOffers(g *gin.RouterGroup) {
	g.GET("", h.listJobOffers)
	g.POST("", h.createJobOffer)
	g.GET("/:id", h.getJobOffer)
	g.PATCH("/:id", h.updateJobOffer)
	g.DELETE("/:id", h.deleteJobOffer)
	g.PUT("/:id/keywords", h.replaceKeywords)
	g.GET("/:id/stats", h.stats)
	g.GET("/:id/cvs", h.listCVs)
	g.POST("/:id/cvs", h.createCV)
	g.PATCH("/:id/cvs/:cv_id", h.moveCV)
}

func (h *Handler) cors() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(h.opts.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.opts.AllowedOrigins
		cfg.AllowCredentials = true
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	return cors.New(cfg)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "recruiter-service",
		"version": h.opts.Version,
	})
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
