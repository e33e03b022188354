package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ipede/user-manager-service/internal/application"
	"github.com/ipede/user-manager-service/internal/infrastructure/config"
	"github.com/ipede/user-manager-service/internal/infrastructure/database"
	"github.com/ipede/user-manager-service/internal/infrastructure/metrics"
	"github.com/ipede/user-manager-service/internal/infrastructure/repository"
	"github.com/ipede/user-manager-service/internal/infrastructure/token"
	"github.com/ipede/user-manager-service/internal/interfaces/http/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Router struct {
	router *chi.Mux
	db     *database.Postgres
}

func NewRouter(
	db *database.Postgres,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	userRepo := repository.NewUserRepository(db, logger)
	roleRepo := repository.NewRoleRepository(db, logger)
	accountRepo := repository.NewAccountRepository(db, logger)
	tokenService := token.New(cfg, logger)
	userService := application.NewUserService(userRepo, roleRepo, logger)
	authService := application.NewAuthService(accountRepo, tokenService, logger)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)

	// Bearer tokens are verified against the same secret used to sign them
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)

	// Create router with middleware
	router := createRouter()

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			// Check database connection
			if err := db.Ping(); err != nil {
				logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Database connection failed"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	// Prometheus endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI configuration
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))

	// Serve Swagger JSON with CORS headers
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "docs/swagger.json")
	})

	// Public account routes
	router.Route("/account", func(r chi.Router) {
		r.Get("/sign-in", accountHandler.SignInHandler)
		r.Post("/sign-up", accountHandler.SignUpHandler)
	})

	// Protected user routes
	router.Route("/user", func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))

		r.Get("/", userHandler.ListUsersHandler)
		r.Post("/", userHandler.CreateUserHandler)
		r.Post("/set-roles", userHandler.AddRolesHandler)
		r.Delete("/delete-roles", userHandler.RemoveRolesHandler)
		r.Get("/{id}", userHandler.GetUserHandler)
		r.Put("/{id}", userHandler.UpdateUserHandler)
		r.Delete("/{id}", userHandler.DeleteUserHandler)
	})

	return &Router{router: router, db: db}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(metrics.Middleware)

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
