// bookshop is a headless demo client: it wires a catalog store into the
// search pipeline and the cart engine, then walks one add-to-cart/checkout
// round against the configured backend.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shozoko/bookshop/cart"
	"github.com/shozoko/bookshop/catalog"
	"github.com/shozoko/bookshop/catalog/memstore"
	"github.com/shozoko/bookshop/catalog/pipeline"
	"github.com/shozoko/bookshop/catalog/remotestore"
	"github.com/shozoko/bookshop/catalog/sqlitestore"
	"github.com/shozoko/bookshop/config"
	"github.com/shozoko/bookshop/money"
	"github.com/shozoko/bookshop/order"
	"github.com/shozoko/bookshop/session"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	term := flag.String("search", "", "search term for the catalog")
	userID := flag.Int64("user", 1, "signed-in user id")
	flag.Parse()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := buildStore(ctx, cfg)

	p := pipeline.New(store, pipeline.WithLogger(log.Logger))
	go p.Run(ctx)

	views := p.Subscribe(ctx)
	view := <-views
	for view.Loading {
		select {
		case view = <-views:
		case <-ctx.Done():
			log.Fatal().Msg("no catalog snapshot arrived")
		}
	}

	p.SetTerm(*term)
	view = p.View()
	log.Info().Str("term", view.Term).Int("matches", len(view.Items)).Msg("catalog filtered")
	for _, it := range view.Items {
		log.Info().
			Str("id", it.ID).
			Str("title", it.Title).
			Str("author", it.Author).
			Str("price", catalogPrice(it)).
			Int("stock", it.Stock).
			Msg("book")
	}

	gate := session.NewMemory()
	gate.SignIn(*userID, "reader")
	submitter := order.NewHTTPSubmitter(cfg.BackendURL, order.WithLogger(log.Logger))
	engine := cart.NewEngine(gate, submitter, cart.WithLogger(log.Logger))

	for i, it := range view.Items {
		if i == 2 {
			break
		}
		engine.AddToCart(it)
	}
	if len(engine.Items()) == 0 {
		log.Warn().Msg("nothing in stock to buy; done")
		return
	}
	log.Info().Str("total", engine.TotalPrice().Format()).Int("lines", len(engine.Items())).Msg("cart ready")

	engine.Checkout(ctx,
		func(resp order.Response) {
			log.Info().Int64("order_id", resp.OrderID).Msg("purchase confirmed")
		},
		func(err cart.CheckoutError) {
			log.Error().Str("kind", err.Kind.String()).Msg(err.Message)
		},
	)
}

func buildStore(ctx context.Context, cfg config.Config) catalog.Store {
	switch cfg.StoreKind {
	case "memory":
		return memstore.Seed(
			catalog.Item{ID: "1", Title: "Dune", Author: "Frank Herbert", Category: "Sci-Fi", PriceCents: 1290000, Stock: 3, Year: 1965},
			catalog.Item{ID: "2", Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Category: "Sci-Fi", PriceCents: 990000, Stock: 2, Year: 1969},
			catalog.Item{ID: "3", Title: "Pedro Páramo", Author: "Juan Rulfo", PriceCents: 790000, Stock: 5, Year: 1955},
		)
	case "remote":
		return remotestore.New(cfg.BackendURL, remotestore.WithLogger(log.Logger))
	default:
		db, err := sqlitestore.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open db")
		}
		if err := sqlitestore.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		return sqlitestore.New(db, sqlitestore.WithLogger(log.Logger))
	}
}

func catalogPrice(it catalog.Item) string {
	if it.Unknown.Has(catalog.FieldPrice) {
		return "unknown"
	}
	return money.Money{Cents: it.PriceCents}.Format()
}
