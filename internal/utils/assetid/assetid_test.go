package assetid

import (
	"strings"
	"sync"
	"testing"
)

func TestNewRecord(t *testing.T) {
	id := NewRecord()
	if !strings.HasPrefix(id, "rec_") {
		t.Errorf("NewRecord() = %q, want rec_ prefix", id)
	}
	if len(id) != len("rec_")+26 {
		t.Errorf("NewRecord() length = %d, want %d", len(id), len("rec_")+26)
	}
	if id != strings.ToLower(id) {
		t.Errorf("NewRecord() = %q, want lowercase", id)
	}
}

func TestNewAsset(t *testing.T) {
	id := NewAsset()
	if !strings.HasPrefix(id, "med_") {
		t.Errorf("NewAsset() = %q, want med_ prefix", id)
	}
	if _, err := Parse(id); err != nil {
		t.Errorf("Parse(%q) error = %v", id, err)
	}
}

func TestNewAsset_ConcurrentMinting(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 200

	var mu sync.Mutex
	seen := make(map[string]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := NewAsset()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("got %d unique IDs, want %d", len(seen), goroutines*perGoroutine)
	}
	for id := range seen {
		if _, err := Parse(id); err != nil {
			t.Fatalf("Parse(%q) error = %v", id, err)
		}
	}
}

func TestNewRecord_Uniqueness(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool)

	for i := 0; i < iterations; i++ {
		id := NewRecord()
		if seen[id] {
			t.Fatalf("NewRecord() generated duplicate ID: %v", id)
		}
		seen[id] = true
	}
}

func TestIsRecord(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{
			name: "generated record ID",
			id:   NewRecord(),
			want: true,
		},
		{
			name: "asset ID",
			id:   NewAsset(),
			want: false,
		},
		{
			name: "missing prefix",
			id:   "01hv3g2x8p9q4r5s6t7u8v9w0x",
			want: false,
		},
		{
			name: "prefix with garbage suffix",
			id:   "rec_not-a-ulid",
			want: false,
		},
		{
			name: "empty",
			id:   "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecord(tt.id); got != tt.want {
				t.Errorf("IsRecord(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
