package cache

import (
	"testing"
	"time"
)

func TestLookupKey(t *testing.T) {
	a := LookupKey("AAPL", "revenue", "2023-FY")
	b := LookupKey("aapl", "revenue", "2023-FY")
	if a != b {
		t.Error("ticker case must not change the key")
	}

	latest := LookupKey("AAPL", "revenue", "")
	if latest == a {
		t.Error("latest-period lookup must not collide with an explicit period")
	}

	if LookupKey("MSFT", "revenue", "2023-FY") == a {
		t.Error("different tickers must produce different keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should miss")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("got %q/%v, want v/true", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("deleted key should miss")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("got %q/%v, want v/true", val, found)
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry should miss")
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	// Fresh layered cache over the same directory: memory is cold, the value
	// must come back from disk.
	c2 := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c2.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("got %q/%v, want disk hit", val, found)
	}
}
