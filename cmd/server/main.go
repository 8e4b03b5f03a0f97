package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storyloom/internal/auth"
	"storyloom/internal/capabilities"
	"storyloom/internal/config"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/handler"
	"storyloom/internal/middleware"
	"storyloom/internal/repository"
	"storyloom/internal/service"
	serviceAuth "storyloom/internal/service/auth"
	serviceDocsys "storyloom/internal/service/docsystem"
	"storyloom/internal/service/docsystem/converter"
	serviceLLM "storyloom/internal/service/llm"
	"storyloom/internal/service/prompt"
	"storyloom/internal/session"
	"storyloom/internal/vocabulary"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"auth_mode", cfg.AuthMode,
		"table_prefix", cfg.TablePrefix,
	)

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server exited", "error", err)
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource opened after logging; each is closed by a defer on
// any return path.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("store close", "error", err)
		}
	}()

	// Prompt vocabulary and model limits
	vocab := vocabulary.Default()
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		return fmt.Errorf("initialize capability registry: %w", err)
	}

	completion, err := serviceLLM.SetupCompletion(cfg, capabilityRegistry, logger)
	if err != nil {
		return fmt.Errorf("set up completion service: %w", err)
	}

	// Services
	htmlConverter := converter.NewHTMLConverter()
	composer := prompt.NewComposer(vocab)
	projectService := serviceDocsys.NewProjectService(store.Projects, htmlConverter, logger)
	docService := serviceDocsys.NewDocumentService(store.Projects, htmlConverter, logger)
	styleService := service.NewStyleService(store.Styles, store.Tx, vocab, logger)
	writingService := service.NewWritingService(
		projectService,
		docService,
		styleService,
		completion,
		composer,
		htmlConverter,
		logger,
	)

	handlers := &handler.Handlers{
		Health:       handler.NewHealthHandler(store, logger),
		Projects:     handler.NewProjectHandler(projectService, logger),
		Documents:    handler.NewDocumentHandler(docService, logger),
		AuthorStyles: handler.NewStyleHandler(styleService, style.KindAuthor, logger),
		BookStyles:   handler.NewStyleHandler(styleService, style.KindBook, logger),
		Writing:      handler.NewWritingHandler(writingService, logger),
		Models:       handler.NewModelsHandler(cfg, logger, capabilityRegistry),
	}

	// Identity
	var verifier auth.TokenVerifier
	var sessions *session.RedisStore
	switch cfg.AuthMode {
	case config.AuthSupabase:
		verifier, err = auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			return fmt.Errorf("create JWT verifier: %w", err)
		}
	case config.AuthLocal:
		tokens, err := auth.NewLocalTokens(cfg.JWTSecret, cfg.AccessTokenTTL, logger)
		if err != nil {
			return fmt.Errorf("create token issuer: %w", err)
		}
		sessions, err = session.NewRedisStore(ctx, cfg.RedisURL, cfg.TablePrefix)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if err := sessions.Close(); err != nil {
				logger.Warn("redis close", "error", err)
			}
		}()
		accountService := serviceAuth.NewAccountService(store.Users, sessions, tokens, cfg.RefreshTokenTTL, logger)
		handlers.Auth = handler.NewAuthHandler(accountService, logger)
		verifier = tokens
		if cfg.Environment == "prod" && cfg.JWTSecret == "storyloom-dev-secret" {
			logger.Warn("JWT_SECRET is the development default; set a real secret")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}
	defer verifier.Close()

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Logging → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(verifier, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Completion calls may run up to COMPLETION_TIMEOUT
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		serverErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	logger.Info("server stopped")
	return runErr
}
