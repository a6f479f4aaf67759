package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/auth"
	"github.com/kickboxbd/kickbox-backend/internal/config"
	"github.com/kickboxbd/kickbox-backend/internal/database"
	"github.com/kickboxbd/kickbox-backend/internal/mailer"
	"github.com/kickboxbd/kickbox-backend/internal/router"
	"github.com/kickboxbd/kickbox-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("Server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse level")
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// newVerifier prefers the provider's published keys over a shared secret.
func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	opts := []auth.JWTOption{
		auth.WithIssuer(cfg.JWTIssuer),
		auth.WithAudience(cfg.JWTAudience),
	}
	if cfg.UsesJWKS() {
		return auth.NewJWKSVerifier(ctx, cfg.JWKSURL, opts...)
	}
	return auth.NewJWTVerifier(cfg.JWTSecret, opts...), nil
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return errors.Wrap(err, "mongo")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			lg.Warn("Mongo disconnect", zap.Error(err))
		}
	}()

	db := client.Database(cfg.DBName)
	lg.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(ctx, db.Collection(cfg.ProductsCollection), database.ProductIndexes(), lg); err != nil {
		lg.Warn("Product index warning", zap.Error(err))
	}
	if err := database.EnsureIndexes(ctx, db.Collection(cfg.OrdersCollection), database.OrderIndexes(), lg); err != nil {
		lg.Warn("Order index warning", zap.Error(err))
	}

	products := store.NewProducts(db, cfg.ProductsCollection, cfg.StoreTimeout)
	orders := store.NewOrders(db, cfg.OrdersCollection, cfg.StoreTimeout)

	var sender mailer.Sender = mailer.NewLogSender(lg.Named("mailer"))
	if cfg.MailConfigured() {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.MailUser,
			Password: cfg.MailPassword,
			FromName: cfg.MailFromName,
			Timeout:  cfg.MailTimeout,
		})
	} else {
		lg.Warn("SMTP credentials missing, confirmation emails are only logged")
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "verifier")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := router.New(router.Deps{
		Products:    products,
		Orders:      orders,
		Pinger:      products,
		Verifier:    verifier,
		Sender:      sender,
		Logger:      lg,
		Registry:    reg,
		Brand:       cfg.MailFromName,
		AuthTimeout: cfg.AuthTimeout,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPatch,
				http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		})(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		lg.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	lg.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
