// Package backend opens the record store and the optional change feed
// selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

// Kind names a record store implementation.
type Kind string

const (
	SQLite Kind = "sqlite"
	Memory Kind = "memory"
)

func (k Kind) Valid() bool {
	return k == SQLite || k == Memory
}

// Options selects and locates the store. The AMQP fields are optional;
// an empty URL means no change feed.
type Options struct {
	Kind       Kind
	SQLitePath string
	SeedDir    string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// OptionsFrom picks the backend fields out of the application config.
func OptionsFrom(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("nil config")
	}
	opts := Options{
		Kind:         Kind(cfg.DataBackend),
		SQLitePath:   cfg.SQLiteDBPath,
		SeedDir:      cfg.DataDir,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}
	return opts, opts.Validate()
}

func (o Options) Validate() error {
	var errs []error
	if !o.Kind.Valid() {
		errs = append(errs, fmt.Errorf("unknown backend %q", o.Kind))
	}
	if o.Kind == SQLite && o.SQLitePath == "" {
		errs = append(errs, errors.New("sqlite backend needs a database path"))
	}
	if o.AMQPURL != "" && (o.AMQPExchange == "" || o.AMQPQueue == "") {
		errs = append(errs, errors.New("change feed needs an exchange and a queue"))
	}
	return errors.Join(errs...)
}

// Backend is an opened store plus its feed. Close releases both.
type Backend struct {
	Store store.Store
	Feed  services.ChangeFeed
}

func (b *Backend) Close() error {
	var errs []error
	if err := b.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if b.Feed != nil {
		if err := b.Feed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("change feed: %w", err))
		}
	}
	return errors.Join(errs...)
}

type Opener struct {
	logger *log.Logger
}

func NewOpener(logger *log.Logger) *Opener {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &Opener{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open builds the store named by opts. A broker that cannot be reached
// leaves Feed nil instead of failing.
func (o *Opener) Open(ctx context.Context, opts Options) (*Backend, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch opts.Kind {
	case SQLite:
		st, err = storage.NewSQLiteRepository(opts.SQLitePath)
		if err == nil {
			o.logger.InfoContext(ctx, "Opened SQLite store", "db_path", opts.SQLitePath)
		}
	case Memory:
		dir := opts.SeedDir
		if dir == "" {
			dir = "data"
		}
		st, err = memory.NewFromFiles(dir)
		if err == nil {
			o.logger.InfoContext(ctx, "Opened memory store", "seed_dir", dir)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Kind, err)
	}

	b := &Backend{Store: st}
	if opts.AMQPURL == "" {
		return b, nil
	}
	client, err := amqp.NewClient(opts.AMQPURL, opts.AMQPExchange, opts.AMQPQueue, o.logger)
	if err != nil {
		o.logger.WarnContext(ctx, "Broker unreachable, continuing without change feed", log.FieldError, err)
		return b, nil
	}
	o.logger.InfoContext(ctx, "Change feed connected", "exchange", opts.AMQPExchange, "queue", opts.AMQPQueue)
	b.Feed = client
	return b, nil
}
