package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("yahoo:AAPL:price")
	k2 := Key("yahoo:AAPL:price")
	k3 := Key("yahoo:AAPL:volume")

	if k1 != k2 {
		t.Error("identical identities must produce identical keys")
	}
	if k1 == k3 {
		t.Error("different identities must produce different keys")
	}
	if !strings.HasPrefix(k1, "finfact:v1:") {
		t.Errorf("key missing version prefix: %s", k1)
	}
}

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("Get = (%q, %v), want (v, true)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestDisk_RoundTrip(t *testing.T) {
	c := NewDisk(t.TempDir(), time.Minute)

	key := Key("yahoo:AAPL:price")
	if err := c.Set(key, []byte("$201.34 (Current)"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != "$201.34 (Current)" {
		t.Errorf("Get = (%q, %v)", val, found)
	}

	// A second Disk over the same dir sees the entry
	c2 := NewDisk(c.dir, time.Minute)
	if _, found := c2.Get(key); !found {
		t.Error("expected entry to survive across instances")
	}
}

func TestDisk_Expiry(t *testing.T) {
	c := NewDisk(t.TempDir(), time.Minute)

	key := Key("stale")
	if err := c.Set(key, []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to be dropped")
	}
}

func TestLayered_PromotesDiskHits(t *testing.T) {
	c := NewLayered(time.Minute, t.TempDir(), time.Minute)

	key := Key("classify:market cap")
	if err := c.disk.Set(key, []byte("market_cap"), time.Minute); err != nil {
		t.Fatalf("disk Set failed: %v", err)
	}

	// First Get comes from disk and promotes to memory
	val, found := c.Get(key)
	if !found || string(val) != "market_cap" {
		t.Fatalf("Get = (%q, %v)", val, found)
	}

	if _, found := c.memory.Get(key); !found {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestLayered_SetWritesBothLayers(t *testing.T) {
	c := NewLayered(time.Minute, t.TempDir(), time.Minute)

	key := Key("k")
	if err := c.Set(key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.memory.Get(key); !found {
		t.Error("value missing from memory layer")
	}
	if _, found := c.disk.Get(key); !found {
		t.Error("value missing from disk layer")
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}
