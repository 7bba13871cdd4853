package indx

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the query result cache lifetime used when the service
// options leave it unset.
const DefaultCacheTTL = 30 * time.Minute

// maxCachedResults caps the size of a result set the service will write to
// the cache. Larger sets are served directly.
const maxCachedResults = 10000

// ServiceOptions carries the optional collaborators of a Service. Nil fields
// default to real implementations; a nil Cache disables result caching.
type ServiceOptions struct {
	Cache       CacheStore
	CacheTTL    time.Duration
	Logger      Logger
	Clock       Clock
	IDGenerator IDGenerator
}

// Service is the engine facade: directory indexing, tag lifecycle, queries,
// bookmarks, queues and saved queries. All methods are safe for concurrent
// use; indexing runs of the same directory are serialized.
type Service struct {
	db       Database
	files    FileManager
	xids     XIDStore
	cache    CacheStore
	cacheTTL time.Duration
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex
}

// NewService creates a Service over the given stores.
func NewService(db Database, files FileManager, xids XIDStore, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = NewNopLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	idgen := opts.IDGenerator
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		db:       db,
		files:    files,
		xids:     xids,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		dirLocks: make(map[string]*sync.Mutex),
	}
}

// lockDir returns the mutex serializing index runs of one directory,
// creating it on first use. Locks are never removed; the set of indexed
// directories is small and stable.
func (s *Service) lockDir(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.dirLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.dirLocks[path] = lock
	}
	return lock
}
