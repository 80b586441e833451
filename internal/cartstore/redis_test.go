package cartstore

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
)

type fakeKV struct {
	data   map[string]string
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func newRedisStore(kv *fakeKV) *RedisStore {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRedisStore(kv, "commercify_cart", logg)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := newRedisStore(kv)

	if err := store.Save(ctx, sampleLines()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	lines, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if len(lines) != 2 || lines[0].Product.ID != "p1" {
		t.Fatalf("unexpected restored lines %v", lines)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := kv.data["commercify_cart"]; ok {
		t.Fatal("expected snapshot gone after clear")
	}
}

func TestRedisStoreRestoreMissingKey(t *testing.T) {
	lines, err := newRedisStore(newFakeKV()).Restore(context.Background())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %v", lines)
	}
}

func TestRedisStoreDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data["commercify_cart"] = `{"not":"an array"}`
	store := newRedisStore(kv)

	lines, err := store.Restore(ctx)
	if err != nil {
		t.Fatalf("corrupt snapshot must not surface an error, got %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %v", lines)
	}
	if _, ok := kv.data["commercify_cart"]; ok {
		t.Fatal("expected corrupt snapshot to be cleared")
	}
}

func TestRedisStoreSaveErrorIsCoded(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("connection refused")
	store := newRedisStore(kv)

	err := store.Save(context.Background(), sampleLines())
	if err == nil {
		t.Fatal("expected save error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
