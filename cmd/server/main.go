package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/videotube-server/auth"
	"github.com/jrsteele09/videotube-server/internal/config"
	"github.com/jrsteele09/videotube-server/internal/database"
	"github.com/jrsteele09/videotube-server/internal/logging"
	"github.com/jrsteele09/videotube-server/internal/metrics"
	"github.com/jrsteele09/videotube-server/media"
	"github.com/jrsteele09/videotube-server/ratelimit"
	"github.com/jrsteele09/videotube-server/server"
	"github.com/jrsteele09/videotube-server/subscriptions"
	fakesubscriptionrepo "github.com/jrsteele09/videotube-server/subscriptions/repofake"
	pgsubscriptionrepo "github.com/jrsteele09/videotube-server/subscriptions/repopg"
	"github.com/jrsteele09/videotube-server/token"
	"github.com/jrsteele09/videotube-server/users"
	fakeuserrepo "github.com/jrsteele09/videotube-server/users/repofake"
	pguserrepo "github.com/jrsteele09/videotube-server/users/repopg"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	deps, cleanup, err := buildDependencies(ctx, c)
	cancel()
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// buildDependencies wires the stores selected by configuration. Without a
// DATABASE_URL the in-memory stores are used, without an S3 bucket media goes
// to the data folder and without REDIS_ADDR login limiting is per process.
func buildDependencies(ctx context.Context, c config.Config) (server.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (server.Dependencies, func(), error) {
		cleanup()
		return server.Dependencies{}, func() {}, err
	}

	var userRepo users.UserRepo
	var subscriptionRepo subscriptions.Repo
	if dsn := c.GetDatabaseURL(); dsn != "" {
		db, err := openDatabase(ctx, dsn)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { db.Close() })
		userRepo = pguserrepo.NewPostgresRepository(db)
		subscriptionRepo = pgsubscriptionrepo.NewPostgresRepository(db)
		log.Info().Msg("using postgres stores")
	} else {
		userRepo = fakeuserrepo.NewFakeUserRepo()
		subscriptionRepo = fakesubscriptionrepo.NewFakeSubscriptionRepo()
		log.Warn().Msg("DATABASE_URL not set, using in-memory stores")
	}

	accessExpiry, err := c.GetAccessTokenExpiry()
	if err != nil {
		return fail(err)
	}
	refreshExpiry, err := c.GetRefreshTokenExpiry()
	if err != nil {
		return fail(err)
	}
	tokens, err := token.New(userRepo, token.Config{
		AccessSecret:  c.GetAccessTokenSecret(),
		AccessExpiry:  accessExpiry,
		RefreshSecret: c.GetRefreshTokenSecret(),
		RefreshExpiry: refreshExpiry,
	})
	if err != nil {
		return fail(err)
	}

	var store media.Store
	var mediaHandler http.Handler
	if bucket := c.GetS3Bucket(); bucket != "" {
		s3Store, err := media.NewS3Store(ctx, media.S3Config{
			Bucket:    bucket,
			Region:    c.GetS3Region(),
			Endpoint:  c.GetS3Endpoint(),
			AccessKey: c.GetS3AccessKey(),
			SecretKey: c.GetS3SecretKey(),
			PublicURL: c.GetS3PublicURL(),
		})
		if err != nil {
			return fail(err)
		}
		store = s3Store
	} else {
		diskStore, err := media.NewDiskStore(filepath.Join(c.GetDataFolder(), "media"), c.GetBaseURL())
		if err != nil {
			return fail(err)
		}
		store = diskStore
		mediaHandler = diskStore.Handler()
	}

	accounts, err := auth.NewAccountService(userRepo, tokens, media.NewUploader(store, media.WithMaxBytes(c.GetMaxUploadBytes())))
	if err != nil {
		return fail(err)
	}

	var limiter ratelimit.Limiter
	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		closers = append(closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, login limiting fails open until it recovers")
		}
		limiter = ratelimit.NewRedis(client, c.GetLoginRateLimit(), c.GetLoginRateWindow(), "")
	} else {
		limiter = ratelimit.NewMemory(c.GetLoginRateLimit(), c.GetLoginRateWindow())
	}

	return server.Dependencies{
		Accounts:      accounts,
		Subscriptions: subscriptions.NewService(subscriptionRepo, userRepo),
		Tokens:        tokens,
		Users:         userRepo,
		LoginLimiter:  limiter,
		Metrics:       metrics.New(),
		MediaHandler:  mediaHandler,
	}, cleanup, nil
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := database.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
