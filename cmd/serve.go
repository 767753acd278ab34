package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"devconnector/bootstrap"
	"devconnector/config"
	"devconnector/database"
	"devconnector/internal/auth"
	"devconnector/internal/cache"
	"devconnector/internal/events"
	"devconnector/internal/middleware"
	"devconnector/internal/repository"
	"devconnector/internal/routes"
	"devconnector/internal/services"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	serveCmd.Flags().BoolVar(&useMemory, "memory", false, "keep data in process memory instead of MongoDB")
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

type stores struct {
	posts    services.PostStore
	users    services.UserStore
	profiles services.ProfileChecker
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	log := cfg.NewLogger()
	slog.SetDefault(log)

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	var postCache services.PostCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		postCache = cache.NewRedisPostCache(rdb, cfg.CacheTTL, log)
		log.Info("post cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	var publisher services.EventPublisher
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publisher = events.NewNatsPublisher(nc, log)
		log.Info("event publishing enabled", "url", cfg.NatsURL)
	}

	posts := services.NewPostService(st.posts, st.profiles, postCache, publisher, services.PostOptions{
		RequireProfile: cfg.RequireProfile,
		Logger:         log,
	})
	users := services.NewUserService(st.users, auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL), bcrypt.DefaultCost)

	app := routes.NewApp(routes.Deps{
		Posts:          posts,
		Users:          users,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        middleware.NewMetrics(),
		Logger:         log,
		RequestLog:     true,
	})

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "port", cfg.Port)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, func(), error) {
	if useMemory {
		log.Warn("using in-memory stores, data is lost on exit")
		return stores{
			posts:    repository.NewMemoryPostStore(),
			users:    repository.NewMemoryUserStore(),
			profiles: repository.NewMemoryProfileStore(),
		}, func() {}, nil
	}

	client, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return stores{}, nil, err
	}
	db := client.Database(cfg.MongoDB)

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := bootstrap.EnsureIndexes(idxCtx, db); err != nil {
		_ = database.DisconnectMongo(client)
		return stores{}, nil, err
	}

	closeFn := func() {
		if err := database.DisconnectMongo(client); err != nil {
			log.Error("mongo disconnect failed", "error", err)
		}
	}
	return stores{
		posts:    repository.NewPostRepository(db, config.CollectionPosts),
		users:    repository.NewUserRepository(db, config.CollectionUsers),
		profiles: repository.NewProfileRepository(db, config.CollectionProfiles),
	}, closeFn, nil
}
