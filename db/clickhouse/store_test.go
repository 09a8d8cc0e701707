package clickhouse

import (
	"context"
	"errors"
	"os"
	"testing"

	"carprice/db/artifact"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	host := os.Getenv("CARPRICE_TEST_CLICKHOUSE_HOST")
	if host == "" {
		t.Skip("CARPRICE_TEST_CLICKHOUSE_HOST not set")
	}
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Database = "default"
	s, err := NewStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() {
		s.conn.Exec(context.Background(), "DROP TABLE IF EXISTS model_artifacts")
		s.Close()
	})
	return s
}

func TestStore_PublishLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("Load on empty table: err = %v", err)
	}
	for _, blob := range []string{`{"v":1}`, `{"v":2}`} {
		if err := s.Publish(ctx, []byte(blob)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("Load = %s, want the latest blob", got)
	}

	records, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	active := 0
	for _, r := range records {
		if r.IsActive {
			active++
		}
	}
	if len(records) != 2 || active != 1 {
		t.Errorf("records = %+v, want 2 rows with one active", records)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 9000 || cfg.Database != "carprice" {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}
