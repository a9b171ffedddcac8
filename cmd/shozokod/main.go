// shozokod is the reference JSON backend the remote catalog variant and the
// order submitter talk to: book CRUD plus order placement with stock
// decrement, backed by the same sqlite table the local variant uses.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shozoko/bookshop/catalog/sqlitestore"
	"github.com/shozoko/bookshop/config"
	"github.com/shozoko/bookshop/events"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()

	db, err := sqlitestore.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	must(sqlitestore.Migrate(ctx, db))
	must(migrateOrders(ctx, db))
	cancel()

	var storeOpts []sqlitestore.Option
	storeOpts = append(storeOpts, sqlitestore.WithLogger(log.Logger))
	if cfg.RabbitURL != "" {
		pub, err := events.Dial(cfg.RabbitURL, cfg.Exchange, log.Logger)
		must(err)
		defer pub.Close()
		storeOpts = append(storeOpts, sqlitestore.WithEvents(pub))
		log.Info().Str("exchange", cfg.Exchange).Msg("event publishing enabled")
	}
	store := sqlitestore.New(db, storeOpts...)

	srv := &server{store: store, db: db}
	handler := cors.AllowAll().Handler(withLog(srv.routes()))
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.ListenAddr).Str("db", cfg.DBPath).Msg("shozokod listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("serve")
	}
}

func withLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}
