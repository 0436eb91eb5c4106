package app

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/humanbelnik/kinoshelf/internal/config"
	http_advisor "github.com/humanbelnik/kinoshelf/internal/delivery/http/advisor"
	http_auth "github.com/humanbelnik/kinoshelf/internal/delivery/http/auth"
	http_init "github.com/humanbelnik/kinoshelf/internal/delivery/http/init"
	http_access_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/access"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	http_ratelimit_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/ratelimit"
	http_movie "github.com/humanbelnik/kinoshelf/internal/delivery/http/movie"
	http_navigation "github.com/humanbelnik/kinoshelf/internal/delivery/http/navigation"
	http_review "github.com/humanbelnik/kinoshelf/internal/delivery/http/review"
	http_swagger "github.com/humanbelnik/kinoshelf/internal/delivery/http/swagger"
	ws_chat "github.com/humanbelnik/kinoshelf/internal/delivery/ws/chat"
	advisor_client "github.com/humanbelnik/kinoshelf/internal/infra/advisor"
	auth_client "github.com/humanbelnik/kinoshelf/internal/infra/auth"
	infra_memory_localstorage "github.com/humanbelnik/kinoshelf/internal/infra/memory/localstorage"
	infra_pg_init "github.com/humanbelnik/kinoshelf/internal/infra/postgres/init"
	infra_postgres_localstorage "github.com/humanbelnik/kinoshelf/internal/infra/postgres/localstorage"
	infra_redis_init "github.com/humanbelnik/kinoshelf/internal/infra/redis/init"
	infra_redis_localstorage "github.com/humanbelnik/kinoshelf/internal/infra/redis/localstorage"
	infra_seed "github.com/humanbelnik/kinoshelf/internal/infra/seed"
	storage_catalog "github.com/humanbelnik/kinoshelf/internal/storage/catalog"
	usecase_advisor "github.com/humanbelnik/kinoshelf/internal/usecase/advisor"
	usecase_navigation "github.com/humanbelnik/kinoshelf/internal/usecase/navigation"
	usecase_review "github.com/humanbelnik/kinoshelf/internal/usecase/review"
	usecase_session "github.com/humanbelnik/kinoshelf/internal/usecase/session"
	usecase_shell "github.com/humanbelnik/kinoshelf/internal/usecase/shell"
)

func Go(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controllerPool := Build(ctx, cfg)
	controllerPool.RunAll(cfg.HTTP.Host, cfg.HTTP.Port)
}

// Build wires every component and registers the routes. The chat hub and
// the janitors of the per-client state run until ctx is cancelled.
func Build(ctx context.Context, cfg *config.Config) *http_init.ControllerPool {
	seed := infra_seed.MustLoad()
	catalog := storage_catalog.New(seed.Movies, seed.Genres)
	slog.Info("catalog loaded", slog.Int("movies", catalog.Len()))

	storage := mustLocalStorage(ctx, cfg)

	authClient := auth_client.New(cfg.Auth.Servers, cfg.Auth.Timeout)
	advisorClient := advisor_client.New(cfg.Advisor.BaseURL, cfg.Advisor.Timeout)

	sessionUC := usecase_session.New(storage, authClient)
	reviewUC := usecase_review.New(storage, catalog)
	navigationUC := usecase_navigation.New(catalog)
	advisorUC := usecase_advisor.New(advisorClient, navigationUC)
	shell := usecase_shell.New(catalog, sessionUC, reviewUC, navigationUC)

	hub := ws_chat.NewHub(advisorUC)
	go hub.Run(ctx)

	clientMiddleware := http_client_middleware.New(cfg.Client.CookieName, cfg.Client.Secret, cfg.Client.TTL)
	limiter := http_ratelimit_middleware.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	go navigationUC.Run(ctx, cfg.Janitor.Interval, cfg.Janitor.IdleTTL)
	go limiter.Run(ctx, cfg.Janitor.Interval, cfg.Janitor.IdleTTL)

	controllerPool := http_init.NewControllerPool(
		cors.New(corsConfig(cfg.HTTP.CORSOrigins)),
		http_access_middleware.ReadOnlyBadGatewayMiddleware(cfg.HTTP.Mode),
		clientMiddleware.Identify(),
	)
	controllerPool.Add(http_swagger.New(""))
	controllerPool.Add(http_movie.New(catalog))
	controllerPool.Add(http_auth.New(shell))
	controllerPool.Add(http_review.New(shell))
	controllerPool.Add(http_navigation.New(shell))
	controllerPool.Add(http_advisor.New(advisorUC, http_advisor.WithLimiter(limiter.Limit(http_client_middleware.ClientID))))
	controllerPool.Add(ws_chat.NewController(hub))

	controllerPool.Register()
	return controllerPool
}

func mustLocalStorage(ctx context.Context, cfg *config.Config) usecase_session.LocalStorage {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		return infra_redis_localstorage.New(redisConn, cfg.Storage.Namespace)
	case config.StoragePostgres:
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		driver := infra_postgres_localstorage.New(pgConn)
		if err := driver.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare local storage schema: %v", err)
		}
		return driver
	case config.StorageMemory:
		return infra_memory_localstorage.New()
	default:
		log.Fatalf("unknown storage driver %q", cfg.Storage.Driver)
		return nil
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	c.ExposeHeaders = []string{"Content-Length", http_client_middleware.TokenHeader}
	return c
}
