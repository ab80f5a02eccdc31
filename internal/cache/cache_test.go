package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestKeyNamespaces(t *testing.T) {
	content := []byte("x")
	if len(Key("java", content)) != 64 {
		t.Errorf("key length = %d, want 64", len(Key("java", content)))
	}
	if Key("java", content) != Key("java", []byte("x")) {
		t.Error("key should be deterministic")
	}
	if Key("java", content) == Key("csharp", content) {
		t.Error("namespace should change the key")
	}
	if Key("ab", []byte("c")) == Key("a", []byte("bc")) {
		t.Error("namespace and content should not run together")
	}
}

func TestMemo(t *testing.T) {
	m := NewMemo[int]()

	if _, ok := m.Get("k"); ok {
		t.Error("empty memo should miss")
	}
	m.Put("k", 7)
	v, ok := m.Get("k")
	if !ok || v != 7 {
		t.Errorf("Get() = %d, %v; want 7, true", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestNilMemo(t *testing.T) {
	var m *Memo[string]
	m.Put("k", "v")
	if _, ok := m.Get("k"); ok {
		t.Error("nil memo should always miss")
	}
	if m.Len() != 0 {
		t.Error("nil memo should report zero")
	}
}

func TestMemoConcurrent(t *testing.T) {
	m := NewMemo[int]()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			m.Put(key, i)
			m.Get(key)
		}()
	}
	wg.Wait()
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
}
