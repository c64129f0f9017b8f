package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("hit on empty cache")
	}

	c.Set("k", "v1")
	if got, ok := c.Get("k"); !ok || got != "v1" {
		t.Errorf("got %q/%v, want v1", got, ok)
	}

	c.Set("k", "v2")
	if got, _ := c.Get("k"); got != "v2" {
		t.Errorf("got %q, want replacement v2", got)
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry missing")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after lazy eviction, want 0", c.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New(0)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v")
	c.now = func() time.Time { return base.Add(24 * time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired with zero TTL")
	}
}

func TestPurge(t *testing.T) {
	c := New(time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("old", "v")
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Set("new", "v")

	c.Purge()
	if c.Len() != 1 {
		t.Errorf("Len = %d after purge, want 1", c.Len())
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("live entry purged")
	}
}
