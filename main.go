package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"braceframe/internal/calc/brace"
	"braceframe/internal/calc/premium/batch"
	"braceframe/internal/calc/premium/importer"
	"braceframe/internal/calc/premium/recommend"
	"braceframe/internal/calc/report"
	"braceframe/internal/config"
	"braceframe/internal/middleware"
)

var wg sync.WaitGroup

// HandleList registers the API routes on router.
func HandleList(router *mux.Router, cfg config.Config, catalog *brace.Catalog) {
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	braceH := &brace.Handler{Catalog: catalog}
	batchH := &batch.Handler{Catalog: catalog}
	importH := &importer.Handler{Catalog: catalog}
	recommendH := &recommend.Handler{Catalog: catalog}
	reportH := &report.Handler{
		Catalog: catalog,
		Renderer: &report.Renderer{
			CompanyName:    cfg.CompanyName,
			CompanyAddress: cfg.CompanyAddress,
			Logo:           report.NewLogoCache(cfg.LogoPath, cfg.LogoURLs),
		},
	}

	api.HandleFunc("/tools/brace/types", braceH.Types).Methods("GET")
	api.HandleFunc("/tools/brace/calc", braceH.Calc).Methods("POST")
	api.HandleFunc("/tools/brace/rules", braceH.Rules).Methods("POST")
	api.HandleFunc("/tools/brace/batch", batchH.Calc).Methods("POST")
	api.HandleFunc("/tools/brace/import", importH.Brace).Methods("POST")
	api.HandleFunc("/tools/brace/recommend", recommendH.BraceTypes).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
}

// NewHandler builds the full HTTP handler chain.
func NewHandler(cfg config.Config, catalog *brace.Catalog) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logger(logrus.StandardLogger()))
	HandleList(router, cfg, catalog)
	return middleware.CORS(router)
}

func loadCatalog(cfg config.Config) (*brace.Catalog, error) {
	if cfg.BraceTablesFile == "" {
		return brace.Default(), nil
	}
	return brace.LoadCatalogFile(cfg.BraceTablesFile)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration")
	}
	logrus.SetLevel(cfg.LogLevel)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logrus.WithError(err).WithField("file", cfg.BraceTablesFile).Fatal("load tables")
	}
	for _, t := range catalog.Types() {
		tbl, _ := catalog.Table(t)
		logrus.WithFields(logrus.Fields{"type": t, "grid_points": tbl.Len()}).Debug("load table ready")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg, catalog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.WithFields(logrus.Fields{"addr": cfg.Addr, "tls": cfg.TLS()}).Info("starting server")
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server shutdown")
	}
	wg.Wait()
	logrus.Info("server stopped")
}
