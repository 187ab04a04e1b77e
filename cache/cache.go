// Package cache memoizes member lookups.
//
// Scanning a type for a member is assumed to be expensive, and the shape of a
// type never changes during the life of a process, so every distinct
// (type, name, kind[, signature]) key is resolved at most once per cache,
// including lookups that find nothing. A resolver that implements
// member.Versioned can still change its answers, for example when a static
// member is registered; the cache starts over whenever that version moves.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/podhmo/go-traverse/member"
	"golang.org/x/sync/singleflight"
)

// ErrMemberNotFound is returned by LookupField and LookupProperty when the
// type has no member with the requested name. It wraps member.ErrNotFound.
var ErrMemberNotFound = fmt.Errorf("lookup: %w", member.ErrNotFound)

type lookupKey struct {
	typ  reflect.Type
	name string
	kind member.Kind
}

// entry is a lookup outcome. found == false is the cached "not found" marker.
type entry struct {
	desc  member.Descriptor
	found bool
}

type methodEntry struct {
	sig member.Signature
	entry
}

// AccessCache is a cache of member descriptors in front of a member.Resolver.
// It is safe for concurrent use. A new cache starts empty.
type AccessCache struct {
	resolver member.Resolver
	logger   *slog.Logger
	flight   singleflight.Group

	mu      sync.RWMutex
	members map[lookupKey]entry
	methods map[lookupKey][]methodEntry // overloads keyed by parameter signature

	version atomic.Uint64 // resolver version the entries were learned under

	hits   atomic.Uint64
	misses atomic.Uint64
	scans  atomic.Uint64
}

// Option is a functional option for configuring the AccessCache.
type Option func(*AccessCache)

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *AccessCache) {
		c.logger = logger
	}
}

// New creates a new, empty AccessCache that resolves misses through r.
func New(r member.Resolver, options ...Option) *AccessCache {
	c := &AccessCache{
		resolver: r,
		members:  make(map[lookupKey]entry),
		methods:  make(map[lookupKey][]methodEntry),
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return c
}

// Resolver returns the resolver behind the cache.
func (c *AccessCache) Resolver() member.Resolver {
	return c.resolver
}

// LookupField returns the field called name in t's hierarchy.
func (c *AccessCache) LookupField(t reflect.Type, name string) (member.Descriptor, error) {
	key := lookupKey{typ: t, name: name, kind: member.FieldKind}
	d, ok := c.lookup(key, nil, func() (member.Descriptor, bool) {
		return c.resolver.ResolveField(t, name)
	})
	if !ok {
		return nil, fmt.Errorf("%w: field %v.%s", ErrMemberNotFound, t, name)
	}
	return d, nil
}

// LookupProperty returns the property called name on t.
func (c *AccessCache) LookupProperty(t reflect.Type, name string) (member.Descriptor, error) {
	key := lookupKey{typ: t, name: name, kind: member.PropertyKind}
	d, ok := c.lookup(key, nil, func() (member.Descriptor, bool) {
		return c.resolver.ResolveProperty(t, name)
	})
	if !ok {
		return nil, fmt.Errorf("%w: property %v.%s", ErrMemberNotFound, t, name)
	}
	return d, nil
}

// LookupMethod returns the method called name on t that accepts sig.
// Absence is reported with ok == false; the caller decides how to react.
func (c *AccessCache) LookupMethod(t reflect.Type, name string, sig member.Signature) (member.Descriptor, bool) {
	key := lookupKey{typ: t, name: name, kind: member.MethodKind}
	sig = append(member.Signature(nil), sig...) // the caller may reuse its slice
	return c.lookup(key, sig, func() (member.Descriptor, bool) {
		return c.resolver.ResolveMethod(t, name, sig)
	})
}

func (c *AccessCache) lookup(key lookupKey, sig member.Signature, scan func() (member.Descriptor, bool)) (member.Descriptor, bool) {
	version := c.sync()
	if e, ok := c.load(key, sig); ok {
		c.hits.Add(1)
		return e.desc, e.found
	}
	c.misses.Add(1)
	c.logger.Debug("member lookup CACHE MISS", slog.Any("type", key.typ), slog.String("name", key.name), slog.String("kind", key.kind.String()))

	// Concurrent misses on one key share a single scan.
	v, _, _ := c.flight.Do(flightKey(key, sig, version), func() (any, error) {
		if e, ok := c.load(key, sig); ok {
			return e, nil
		}
		c.scans.Add(1)
		d, found := scan()
		return c.store(key, sig, entry{desc: d, found: found}, version), nil
	})
	e := v.(entry)
	return e.desc, e.found
}

// sync drops every entry when the resolver's version has moved since they
// were learned, and returns the version lookups now run under.
func (c *AccessCache) sync() uint64 {
	vr, ok := c.resolver.(member.Versioned)
	if !ok {
		return 0
	}
	version := vr.Version()
	if c.version.Load() == version {
		return version
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version.Load() != version {
		c.logger.Debug("resolver version changed, dropping cached lookups", slog.Uint64("from", c.version.Load()), slog.Uint64("to", version))
		c.members = make(map[lookupKey]entry)
		c.methods = make(map[lookupKey][]methodEntry)
		c.version.Store(version)
	}
	return version
}

func (c *AccessCache) load(key lookupKey, sig member.Signature) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if key.kind != member.MethodKind {
		e, ok := c.members[key]
		return e, ok
	}
	for _, me := range c.methods[key] {
		if me.sig.Equal(sig) {
			return me.entry, true
		}
	}
	return entry{}, false
}

// store records e unless an entry already exists, and returns the entry that
// ends up cached, so that every caller observes the same descriptor. An entry
// scanned under a version the cache has already moved past is returned but
// not recorded.
func (c *AccessCache) store(key lookupKey, sig member.Signature, e entry, version uint64) entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version.Load() != version {
		return e
	}
	if key.kind != member.MethodKind {
		if existing, ok := c.members[key]; ok {
			return existing
		}
		c.members[key] = e
		return e
	}
	for _, me := range c.methods[key] {
		if me.sig.Equal(sig) {
			return me.entry
		}
	}
	c.methods[key] = append(c.methods[key], methodEntry{sig: sig, entry: e})
	return e
}

// flightKey identifies a lookup by type identity rather than type name,
// since distinct types may print the same. The name is quoted so that no
// name can run into the signature part.
func flightKey(key lookupKey, sig member.Signature, version uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%p|%q", version, key.kind, key.typ, key.name)
	for _, t := range sig {
		fmt.Fprintf(&b, "|%p", t)
	}
	return b.String()
}

// Len returns the number of cached lookups, found or not.
func (c *AccessCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.members)
	for _, overloads := range c.methods {
		n += len(overloads)
	}
	return n
}

// Clear drops every cached lookup.
func (c *AccessCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = make(map[lookupKey]entry)
	c.methods = make(map[lookupKey][]methodEntry)
}

// Stats holds cache statistics.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Scans   uint64 // calls made to the resolver
}

// Stats returns cache statistics.
func (c *AccessCache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Scans:   c.scans.Load(),
	}
}
