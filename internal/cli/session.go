package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/diagrammer/pkg/config"
	"github.com/matzehuels/diagrammer/pkg/diagram"
	"github.com/matzehuels/diagrammer/pkg/forms"
	"github.com/matzehuels/diagrammer/pkg/kv"
	"github.com/matzehuels/diagrammer/pkg/kv/badger"
	"github.com/matzehuels/diagrammer/pkg/kv/mongo"
	"github.com/matzehuels/diagrammer/pkg/kv/redis"
	"github.com/matzehuels/diagrammer/pkg/kv/sqlite"
	"github.com/matzehuels/diagrammer/pkg/persist"
)

// session is an open diagram: the store loaded from a backend, with every
// mutation written back.
type session struct {
	cfg     config.Config
	kv      kv.Store
	persist *persist.Adapter
	store   *diagram.Store
	forms   *forms.Controller
	report  persist.LoadReport
}

// openSession loads configuration, opens the storage backend and loads the
// stored diagram, falling back to the seed.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)

	seed := diagram.DefaultSeed()
	if cfg.Diagram.SeedFile != "" {
		if seed, err = diagram.ReadSeedFile(cfg.Diagram.SeedFile); err != nil {
			return nil, err
		}
	}
	ids, err := diagram.NewIDGenerator(cfg.Diagram.IDScheme)
	if err != nil {
		return nil, err
	}

	store, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened storage", "backend", cfg.Storage.Backend, "namespace", cfg.Storage.Namespace)

	adapter := persist.New(store, persist.Options{
		Keys:     persist.ScopedKeys(cfg.Storage.Namespace),
		Sanitize: cfg.Diagram.SanitizeOnLoad,
		Logger:   logger,
	})
	d, report := adapter.Load(ctx, seed)

	ds := diagram.NewStore(d)
	ds.Subscribe(adapter.Observer())

	return &session{
		cfg:     cfg,
		kv:      store,
		persist: adapter,
		store:   ds,
		forms:   forms.New(ds, forms.Options{IDs: ids}),
		report:  report,
	}, nil
}

// completionSession opens a session for shell completion, where log output
// would end up in the user's prompt.
func (c *CLI) completionSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.openSession(withLogger(ctx, log.New(io.Discard)))
}

// Close releases the storage backend.
func (s *session) Close() error {
	return s.kv.Close()
}

// saveError reports a failed write during this session. The store's observer
// only logs it.
func (s *session) saveError() error {
	if st := s.persist.Status(); st.Failures > 0 {
		return fmt.Errorf("diagram changed but not saved: %s", st.LastError)
	}
	return nil
}

// openBackend creates the kv.Store selected by cfg.
func openBackend(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kv.NewMemory(cfg.QuotaBytes), nil
	case config.BackendNull:
		return kv.NewNullStore(), nil
	case config.BackendFile:
		return kv.NewFileStore(filepath.Join(cfg.Dir, "kv"))
	case config.BackendBadger:
		bc := badger.DefaultConfig(filepath.Join(cfg.Dir, "badger"))
		bc.SyncWrites = cfg.Badger.SyncWrites
		bc.Logger = logger
		return badger.Open(bc)
	case config.BackendSQLite:
		return sqlite.Open(ctx, filepath.Join(cfg.Dir, "diagram.db"))
	case config.BackendRedis:
		return dial(ctx, logger, func() (kv.Store, error) {
			return redis.Open(ctx, redis.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
			})
		})
	case config.BackendMongo:
		return dial(ctx, logger, func() (kv.Store, error) {
			return mongo.Open(ctx, mongo.Config{
				URI:        cfg.Mongo.URI,
				Database:   cfg.Mongo.Database,
				Collection: cfg.Mongo.Collection,
			})
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// Connection attempts for networked backends.
const (
	dialAttempts = 3
	dialDelay    = 500 * time.Millisecond
)

// dial opens a networked backend, retrying while the server is unreachable.
func dial(ctx context.Context, logger *log.Logger, open func() (kv.Store, error)) (kv.Store, error) {
	var store kv.Store
	attempt := 0
	err := kv.Retry(ctx, dialAttempts, dialDelay, func() error {
		attempt++
		s, err := open()
		if err != nil {
			logger.Debug("backend not reachable", "attempt", attempt, "err", err)
			return err
		}
		store = s
		return nil
	})
	return store, err
}

// backendLocation describes where a backend keeps its data.
func backendLocation(cfg config.StorageConfig) string {
	switch cfg.Backend {
	case config.BackendFile:
		return filepath.Join(cfg.Dir, "kv")
	case config.BackendBadger:
		return filepath.Join(cfg.Dir, "badger")
	case config.BackendSQLite:
		return filepath.Join(cfg.Dir, "diagram.db")
	case config.BackendRedis:
		return "redis://" + cfg.Redis.Addr
	case config.BackendMongo:
		return cfg.Mongo.URI
	}
	return "(not persisted)"
}
