package app_test

import (
	"context"
	"testing"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/storage"
	"taskflow/internal/testutil"
)

func init() {
	logger.Discard()
}

func TestNew_FileStorePersistsAcrossSessions(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), Store: config.StoreFile, PostsURL: "http://127.0.0.1:1/posts"}
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Tasks().Add(ctx, "persist me"); err != nil {
		t.Fatal(err)
	}
	a.Close()

	b, err := app.New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	all := b.Tasks().All()
	if len(all) != 1 || all[0].Title != "persist me" {
		t.Errorf("expected task to survive reopen, got %+v", all)
	}
}

func TestNew_MemoryStore(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), Store: config.StoreMemory}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Tasks().Degraded() {
		t.Error("memory store must not start degraded")
	}
}

func TestNew_UnreachableRedisFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), Store: config.StoreRedis, RedisAddr: "127.0.0.1:1"}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if _, err := a.Tasks().Add(context.Background(), "still works"); err != nil {
		t.Fatal(err)
	}
	if len(a.Tasks().All()) != 1 {
		t.Error("expected in-memory task")
	}
}

func TestNewWith(t *testing.T) {
	src := testutil.NewFakePostSource(testutil.MakePosts(3))
	a := app.NewWith(context.Background(), storage.NewMemory(), src)

	if err := a.Posts().Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(a.Posts().Items()) != 3 {
		t.Errorf("expected 3 posts, got %d", len(a.Posts().Items()))
	}
}
