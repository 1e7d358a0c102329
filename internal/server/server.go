package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/healthdeck/healthdeck/internal/audit"
	auditdomain "github.com/healthdeck/healthdeck/internal/audit/domain"
	"github.com/healthdeck/healthdeck/internal/auth"
	authdomain "github.com/healthdeck/healthdeck/internal/auth/domain"
	"github.com/healthdeck/healthdeck/internal/auth/session"
	"github.com/healthdeck/healthdeck/internal/config"
	"github.com/healthdeck/healthdeck/internal/custconfig"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	"github.com/healthdeck/healthdeck/internal/metrics"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	obslogger "github.com/healthdeck/healthdeck/internal/observability/logger"
	"github.com/healthdeck/healthdeck/internal/providers/deck"
	"github.com/healthdeck/healthdeck/internal/report"
	reportdomain "github.com/healthdeck/healthdeck/internal/report/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(newIDNode),
	custconfig.Module,
	metrics.Module,
	report.Module,
	audit.Module,
	auth.Module,
	deck.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

// newIDNode provides the snowflake generator used for artifact names.
func newIDNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	sessions   *session.Manager
	authsvc    authdomain.Service
	configSvc  configdomain.Service
	metricsSvc metricsdomain.Service
	reportSvc  reportdomain.Service
	auditSvc   auditdomain.Service
	deck       deck.Provider
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Sessions   *session.Manager
	Authsvc    authdomain.Service
	ConfigSvc  configdomain.Service
	MetricsSvc metricsdomain.Service
	ReportSvc  reportdomain.Service
	AuditSvc   auditdomain.Service
	Deck       deck.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("http.server"),
		genID:      p.GenID,
		sessions:   p.Sessions,
		authsvc:    p.Authsvc,
		configSvc:  p.ConfigSvc,
		metricsSvc: p.MetricsSvc,
		reportSvc:  p.ReportSvc,
		auditSvc:   p.AuditSvc,
		deck:       p.Deck,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/check_session", s.CheckSession)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Lookups --------
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/pending", s.PendingCustomers)
	api.GET("/months", s.ListMonths)
	api.GET("/months/pending", s.PendingMonths)
	api.GET("/csms", s.ListCSMs)
	api.GET("/csms/months", s.MonthsForCSM)
	api.GET("/csms/range", s.RangeForCSM)

	// -------- Records --------
	api.GET("/records", s.GetRecord)
	api.GET("/records/exists", s.CheckRecordExists)
	api.POST("/records", s.InsertRecord)
	api.DELETE("/records", s.DeleteRecord)

	// -------- Metric saves --------
	api.POST("/availability", s.SaveAvailability)
	api.POST("/users", s.SaveUsers)
	api.POST("/storage", s.SaveStorage)
	api.POST("/tickets", s.SaveTickets)

	// -------- Configuration --------
	api.GET("/config", s.GetConfig)
	api.POST("/config", s.SaveConfig)

	// -------- Reporting --------
	api.GET("/reporting", s.ReportingRange)
	api.GET("/reporting/deck", s.GenerateDeck)

	// -------- Audit trail --------
	api.GET("/audit", s.LatestAuditLogs)
	api.GET("/audit/download", s.DownloadAuditLogs)
	api.POST("/audit/comment", s.AttachAuditComment)

	// -------- Session filters --------
	api.GET("/filters", s.GetFilters)
	api.POST("/filters", s.SetFilter)
}
