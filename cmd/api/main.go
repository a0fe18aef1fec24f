package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	server "satn_chatbot/internal/adapters/http_server"
	"satn_chatbot/internal/adapters/mailer"
	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/adapters/openai"
	redisad "satn_chatbot/internal/adapters/redis"
	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
	"satn_chatbot/internal/shared"
	mysqlrepo "satn_chatbot/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// deps
	repo := mysqlrepo.New(db)
	var cache domain.Cache = app.NoCache{}
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache enabled")
	}

	dispatch := app.NewDispatcher(newNotifier(cfg))

	var llm domain.LLM
	if cfg.OpenAIKey != "" {
		c, err := openai.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.OpenAIModel, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OpenAI client")
		}
		llm = c
	}

	secret := cfg.SecretKey
	if secret == "" {
		secret = uuid.NewString()
	}
	auth := app.NewAuthService(repo, secret, cfg.TokenTTL)
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error().Err(err).Msg("admin bootstrap failed")
	}

	props := app.NewPropertyService(repo, cache, cfg.CacheTTL)
	interactions := app.NewInteractionService(repo)
	limiter := server.NewIPLimiter(cfg.ChatRPS, cfg.ChatBurst)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Sweep(10 * time.Minute)
			}
		}
	}()

	// http
	var opts []server.Option
	if cfg.TrustProxy {
		opts = append(opts, server.WithTrustedProxy())
	}
	srv := server.New(cfg.CORSOrigins, 60*time.Second, opts...)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	observability.Serve(cfg.MetricsAddr, reg)
	srv.MountHandlers(&server.Handlers{
		Agents:       app.NewAgentService(repo),
		Company:      app.NewCompanyService(repo, cache, cfg.CacheTTL),
		Interactions: interactions,
		Leads:        app.NewLeadService(repo, dispatch),
		Properties:   props,
		Chat:         app.NewChatService(repo, props, interactions, llm, dispatch),
		Auth:         auth,
		Health:       app.NewHealthService(repo),
		ChatLimiter:  limiter,
		Dev:          cfg.IsDev(),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// let queued emails finish
	dispatch.Wait()
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("db close failed")
	}
}

// newNotifier prefers SendGrid, then SMTP, else only logs.
func newNotifier(cfg shared.Config) domain.Notifier {
	switch {
	case cfg.SendGridKey != "":
		log.Info().Msg("email via SendGrid")
		return mailer.NewSendGrid(cfg.SendGridKey, cfg.SendGridFrom, cfg.SendGridTemplateID, cfg.SalesEmail)
	case cfg.SMTPHost != "":
		log.Info().Str("host", cfg.SMTPHost).Msg("email via SMTP")
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SalesEmail)
	default:
		return mailer.Log{}
	}
}
