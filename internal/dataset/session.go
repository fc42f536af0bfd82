package dataset

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/UShah1996/AI-HOPE/domain/schema"
	"github.com/UShah1996/AI-HOPE/internal"
)

// Session bundles one dataset's immutable schema and data frame. It is
// loaded once per dataset selection and safe for any number of concurrent
// readers; nothing mutates it after load.
type Session struct {
	Name   string
	Dir    string
	Schema *schema.DatasetSchema
	Frame  *Frame
}

// SessionCache serves load-once sessions keyed by dataset directory.
// Concurrent requests for the same dataset are collapsed into a single
// load via singleflight, so a table is never read twice in parallel.
type SessionCache struct {
	loader *Loader
	log    *internal.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	group    singleflight.Group
}

// NewSessionCache creates an empty cache backed by loader
func NewSessionCache(loader *Loader, log *internal.Logger) *SessionCache {
	return &SessionCache{
		loader:   loader,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Get returns the cached session for dir, loading it on first use
func (c *SessionCache) Get(dir string) (*Session, error) {
	c.mu.RLock()
	sess, ok := c.sessions[dir]
	c.mu.RUnlock()
	if ok {
		return sess, nil
	}

	v, err, _ := c.group.Do(dir, func() (interface{}, error) {
		loaded, err := c.loader.LoadSession(dir)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.sessions[dir] = loaded
		c.mu.Unlock()
		c.log.Info("dataset %s loaded: %d columns, %d rows", loaded.Name, len(loaded.Schema.Columns), loaded.Frame.RowCount())
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Invalidate drops the cached session for dir, forcing a reload on the
// next Get. Used on explicit dataset switch.
func (c *SessionCache) Invalidate(dir string) {
	c.mu.Lock()
	delete(c.sessions, dir)
	c.mu.Unlock()
}
