package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T, debounce time.Duration) (*Service, string) {
	t.Helper()

	metaPath := filepath.Join(t.TempDir(), "output", "meta.json")
	svc, err := New(metaPath, debounce)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, metaPath
}

func waitForMeta(t *testing.T, svc *Service, timeout time.Duration) (Event, bool) {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == EventMetaChanged {
				return event, true
			}
		case <-deadline:
			return Event{}, false
		}
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	_, metaPath := newTestService(t, 0)

	if info, err := os.Stat(filepath.Dir(metaPath)); err != nil || !info.IsDir() {
		t.Errorf("output directory was not created: %v", err)
	}
}

func TestWatch_MetaWritten(t *testing.T) {
	svc, metaPath := newTestService(t, 50*time.Millisecond)

	if err := os.WriteFile(metaPath, []byte(`{"simulation_id":"medica_day_1"}`), 0600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	event, ok := waitForMeta(t, svc, 2*time.Second)
	if !ok {
		t.Fatal("timeout waiting for EventMetaChanged")
	}
	if event.Path != metaPath {
		t.Errorf("Path = %q, want %q", event.Path, metaPath)
	}
}

func TestWatch_Debounces(t *testing.T) {
	svc, metaPath := newTestService(t, 200*time.Millisecond)

	for i := range 5 {
		content := []byte(`{"simulation_id":"medica_day_` + string(rune('0'+i)) + `"}`)
		if err := os.WriteFile(metaPath, content, 0600); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
	}

	if _, ok := waitForMeta(t, svc, 2*time.Second); !ok {
		t.Fatal("timeout waiting for EventMetaChanged")
	}
	if _, ok := waitForMeta(t, svc, 500*time.Millisecond); ok {
		t.Error("a burst of writes should produce a single event")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	svc, metaPath := newTestService(t, 20*time.Millisecond)

	other := filepath.Join(filepath.Dir(metaPath), "history.json")
	if err := os.WriteFile(other, []byte(`{}`), 0600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, ok := waitForMeta(t, svc, 300*time.Millisecond); ok {
		t.Error("writes to other files should not be reported")
	}
}

func TestClose_Twice(t *testing.T) {
	svc, _ := newTestService(t, 0)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
