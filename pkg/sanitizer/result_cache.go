package sanitizer

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/pawcraft/contentguard/pkg/types"
)

const DefaultCacheCapacity = 1024

// ResultCache memoizes sanitization results keyed by a stable hash of
// (policy version, content type, options, content). Entries are immutable
// after insertion; a repeated key only refreshes recency. Eviction is
// least-recently-used.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key            string
	result         types.SanitizationResult
	insertedAt     time.Time
	lastAccessedAt time.Time
}

func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ResultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// CacheKey builds the stable lookup key. The policy version is folded in
// so a registry change on deploy invalidates stale entries automatically.
func CacheKey(policyVersion string, contentType types.ContentType, opts types.Options, content string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d|", policyVersion, contentType, opts.MaxContentBytes, opts.MaxNestingDepth)
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached result so callers can never mutate
// cached state.
func (c *ResultCache) Get(key string) (types.SanitizationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return types.SanitizationResult{}, false
	}
	entry, ok := el.Value.(*cacheEntry)
	if !ok {
		return types.SanitizationResult{}, false
	}
	entry.lastAccessedAt = time.Now()
	c.order.MoveToFront(el)
	return copyResult(entry.result), true
}

func (c *ResultCache) Put(key string, result types.SanitizationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		if entry, ok := el.Value.(*cacheEntry); ok {
			entry.lastAccessedAt = time.Now()
		}
		c.order.MoveToFront(el)
		return
	}

	now := time.Now()
	el := c.order.PushFront(&cacheEntry{
		key:            key,
		result:         copyResult(result),
		insertedAt:     now,
		lastAccessedAt: now,
	})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		if entry, ok := oldest.Value.(*cacheEntry); ok {
			delete(c.entries, entry.key)
		}
		c.order.Remove(oldest)
	}
}

func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry. Exposed for test isolation and policy
// upgrades.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func copyResult(r types.SanitizationResult) types.SanitizationResult {
	out := r
	out.SecurityViolations = append([]types.SecurityViolation(nil), r.SecurityViolations...)
	out.RemovedElements = append([]string(nil), r.RemovedElements...)
	out.RemovedAttributes = append([]string(nil), r.RemovedAttributes...)
	return out
}
