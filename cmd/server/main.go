package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/config"
	"teenpatti-server/internal/jwt"
	"teenpatti-server/internal/mux"
	"teenpatti-server/pkg/db"
	"teenpatti-server/pkg/history"
	"teenpatti-server/pkg/model"
	"teenpatti-server/pkg/room"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	jwt.LoadKeys()

	// run the db migrations
	db.Migrate()

	publisher, closePublisher := roundPublisher(cfg)
	defer closePublisher()

	pitBoss := room.NewPitBoss(room.Settings{
		Table:           cfg.Table.Options(),
		DisconnectGrace: cfg.Room.DisconnectGrace(),
		ConsentWindow:   cfg.Room.ConsentWindow(),
		NextRoundDelay:  cfg.Room.NextRoundDelay(),
		StartDelay:      cfg.Room.StartDelay(),
	}, room.Dependencies{
		Balances:    model.NewWalletStore(db.Instance(), cfg.Wallet.StartingBalance),
		Publisher:   publisher,
		Preferences: model.NewPreferenceStore(db.Instance()),
		Logger:      logrus.StandardLogger(),
	})
	pitBoss.StartShift()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, pitBoss))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}

	pitBoss.EndShift()
}

// roundPublisher connects to redis if configured, otherwise rounds are not published
func roundPublisher(cfg config.Config) (room.RoundPublisher, func()) {
	if cfg.Redis.Addr == "" {
		logrus.Warn("redis is not configured, round history will not be published")
		return history.Nop{}, func() {}
	}

	publisher, err := history.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Queue)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to redis")
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Warn("could not close redis client")
		}
	}
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
