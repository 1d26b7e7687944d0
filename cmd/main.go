package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "autopost/docs" // swagger docs
	"autopost/internal/generator"
	"autopost/internal/handlers"
	"autopost/internal/logger"
	"autopost/internal/platform"
	"autopost/internal/repository"
	"autopost/internal/repository/db"
	"autopost/internal/server"
	"autopost/internal/service"

	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

// @title        AutoPost API
// @version      1.0
// @description  Personal social-media scheduling dashboard.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// load config.yml first so the log level comes from it
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	// open DB
	conn, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(service.Deps{
		Repos:           repos,
		Generator:       newGenerator(),
		Platforms:       newPlatforms(),
		Log:             log,
		AuthSigningKey:  viper.GetString("auth.signing_key"),
		GenerateTimeout: viper.GetDuration("timeouts.generate"),
		PostTimeout:     viper.GetDuration("timeouts.post"),
		BaseCtx:         ctx,
	})
	apiHandler := handlers.NewHandler(services, log)

	// start the scheduler unless the config says otherwise
	if viper.GetBool("scheduler.autostart") {
		if err := services.Scheduler.Start(ctx); err != nil {
			log.Errorw("failed to autostart scheduler", "err", err)
		}
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, services, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "autopost.db")
		dbPath = "autopost.db"
	}
	return db.InitDB(dbPath)
}

// newGenerator builds the Gemini content generator from config.
func newGenerator() *generator.GeminiClient {
	return generator.NewGeminiClient(generator.Config{
		APIKey:      viper.GetString("gemini.api_key"),
		Model:       viper.GetString("gemini.model"),
		Temperature: viper.GetFloat64("gemini.temperature"),
	})
}

// newPlatforms builds the delivery clients. Clients with missing credentials
// are still registered; they fail at post time with a clear reason.
func newPlatforms() []platform.Client {
	x := platform.NewXClient(platform.XConfig{
		ConsumerKey:       viper.GetString("x.consumer_key"),
		ConsumerSecret:    viper.GetString("x.consumer_secret"),
		AccessToken:       viper.GetString("x.access_token"),
		AccessTokenSecret: viper.GetString("x.access_secret"),
	})
	threads := platform.NewThreadsClient(platform.ThreadsConfig{
		AccessToken: viper.GetString("threads.access_token"),
	})
	return []platform.Client{x, threads}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// ask the scheduler to stop; a dispatch in flight finishes first
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := services.Scheduler.Stop(ctx); err != nil {
		log.Errorw("failed to stop scheduler", "err", err)
	}

	// stop remaining background goroutines
	cancel()

	// allow in-flight requests to complete
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
