// Package traversetest provides helpers for testing code built on traverse.
package traversetest

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/go-traverse/member"
)

// SpyResolver wraps a member.Resolver and counts the lookups made through it.
// It is safe for concurrent use.
type SpyResolver struct {
	member.Resolver

	mu     sync.Mutex
	counts map[string]int
}

// NewSpyResolver wraps r.
func NewSpyResolver(r member.Resolver) *SpyResolver {
	return &SpyResolver{Resolver: r, counts: make(map[string]int)}
}

func (s *SpyResolver) record(op, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[op]++
	s.counts[op+":"+name]++
}

// ResolveField records the call and delegates.
func (s *SpyResolver) ResolveField(t reflect.Type, name string) (member.Descriptor, bool) {
	s.record("ResolveField", name)
	return s.Resolver.ResolveField(t, name)
}

// ResolveProperty records the call and delegates.
func (s *SpyResolver) ResolveProperty(t reflect.Type, name string) (member.Descriptor, bool) {
	s.record("ResolveProperty", name)
	return s.Resolver.ResolveProperty(t, name)
}

// ResolveMethod records the call and delegates.
func (s *SpyResolver) ResolveMethod(t reflect.Type, name string, sig member.Signature) (member.Descriptor, bool) {
	s.record("ResolveMethod", name)
	return s.Resolver.ResolveMethod(t, name, sig)
}

// Version forwards to the wrapped resolver when it is member.Versioned, so
// that caches in front of the spy still notice registrations.
func (s *SpyResolver) Version() uint64 {
	if v, ok := s.Resolver.(member.Versioned); ok {
		return v.Version()
	}
	return 0
}

// Count returns how many times op was called, optionally narrowed to one
// member name: Count("ResolveField") or Count("ResolveField", "count").
func (s *SpyResolver) Count(op string, name ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(name) > 0 {
		return s.counts[op+":"+name[0]]
	}
	return s.counts[op]
}

// Valuer is anything that yields a terminal value, such as *traverse.Traverse.
type Valuer interface {
	GetValue() (any, error)
}

// AssertValue fails the test if v cannot be read or does not hold want.
func AssertValue(t *testing.T, v Valuer, want any, opts ...cmp.Option) {
	t.Helper()
	got, err := v.GetValue()
	if err != nil {
		t.Fatalf("GetValue() failed: %v", err)
	}
	AssertEqual(t, want, got, opts...)
}

// AssertEqual uses go-cmp to compare two values and fails the test if they are not equal.
func AssertEqual(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Errorf("values are not equal (-want +got):\n%s", diff)
	}
}

// AssertErrorIs fails the test if err does not match target.
// If contains has one or more elements, it also checks the error message contains each of them.
func AssertErrorIs(t *testing.T, err, target error, contains ...string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching %v, but got %v", target, err)
	}
	for _, c := range contains {
		if !strings.Contains(err.Error(), c) {
			t.Errorf("error message %q does not contain %q", err.Error(), c)
		}
	}
}
