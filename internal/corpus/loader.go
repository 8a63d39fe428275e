// Package corpus loads the card corpus, fetching it from the catalog when the
// local cache is missing or stale.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/catalog/scryfall"
	"github.com/jsyiek/mtg-card-generator/internal/observability"
	"github.com/jsyiek/mtg-card-generator/internal/storage"
)

// Catalog pages through a card search.
type Catalog interface {
	SearchAll(ctx context.Context, query string, fn func(page int, cards []scryfall.Card) error) (int, error)
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Query is the catalog search that defines the corpus.
	Query string
	// TTL is how long a completed fetch stays fresh. Zero keeps it forever.
	TTL    time.Duration
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// LoadOptions controls one Load call.
type LoadOptions struct {
	// Reset clears the cache and fetches again regardless of freshness.
	Reset bool
	// Categories restricts the returned cards. Empty returns all.
	Categories []card.Category
}

// Freshness describes the cached corpus.
type Freshness struct {
	LastFetch *storage.FetchRun
	Age       time.Duration
	Fresh     bool
}

// Loader serves the corpus from the card cache.
type Loader struct {
	catalog Catalog
	cards   *storage.CardRepository
	cfg     LoaderConfig
}

// NewLoader creates a loader.
func NewLoader(catalog Catalog, cards *storage.CardRepository, cfg LoaderConfig) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loader{catalog: catalog, cards: cards, cfg: cfg}
}

// Status reports whether the cache holds a fresh fetch of the configured query.
func (l *Loader) Status(ctx context.Context) (Freshness, error) {
	last, err := l.cards.LastFetch(ctx)
	if err != nil {
		return Freshness{}, err
	}
	if last == nil {
		return Freshness{}, nil
	}

	age := l.cfg.Now().Sub(last.CompletedAt)
	fresh := last.Query == l.cfg.Query && (l.cfg.TTL <= 0 || age < l.cfg.TTL)
	return Freshness{LastFetch: last, Age: age, Fresh: fresh}, nil
}

// Load returns the corpus, fetching it first when the cache is stale or a reset
// is requested.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) ([]card.Card, error) {
	status, err := l.Status(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Reset || !status.Fresh {
		if _, err := l.Fetch(ctx, opts.Reset); err != nil {
			return nil, err
		}
	} else {
		l.cfg.Logger.Debug("Using cached corpus",
			"query", status.LastFetch.Query,
			"cards", status.LastFetch.CardCount,
			"age", status.Age.Round(time.Second))
	}

	cards, err := l.cards.LoadCards(ctx, opts.Categories...)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// Fetch pages through the catalog and stores every card. The cache is cleared
// first when reset is set or the last fetch used a different query.
func (l *Loader) Fetch(ctx context.Context, reset bool) (*storage.FetchRun, error) {
	ctx, span := observability.StartFetchSpan(ctx, l.cfg.Query, reset)
	defer span.End()

	run, err := l.fetch(ctx, reset)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return run, nil
}

func (l *Loader) fetch(ctx context.Context, reset bool) (*storage.FetchRun, error) {
	if !reset {
		last, err := l.cards.LastFetch(ctx)
		if err != nil {
			return nil, err
		}
		if last != nil && last.Query != l.cfg.Query {
			l.cfg.Logger.Info("Catalog query changed, clearing card cache",
				"previous", last.Query, "query", l.cfg.Query)
			reset = true
		}
	}
	if reset {
		if err := l.cards.ClearCards(ctx); err != nil {
			return nil, err
		}
	}

	run := &storage.FetchRun{Query: l.cfg.Query, StartedAt: l.cfg.Now()}
	l.cfg.Logger.Info("Fetching card catalog", "query", l.cfg.Query, "reset", reset)

	total, err := l.catalog.SearchAll(ctx, l.cfg.Query, func(page int, cards []scryfall.Card) error {
		if err := l.cards.SaveCards(ctx, scryfall.ToCards(cards)); err != nil {
			return fmt.Errorf("save page %d: %w", page, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	run.CardCount = total
	run.CompletedAt = l.cfg.Now()
	if err := l.cards.RecordFetch(ctx, run); err != nil {
		return nil, err
	}

	l.cfg.Logger.Info("Fetched card catalog",
		"cards", total,
		"duration", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run, nil
}
