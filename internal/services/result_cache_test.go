package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"deliwaste/server/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisResultCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisResultCache(utils.NewRedisClient(client), 5*time.Minute, zap.NewNop())
}

func TestRedisResultCache_SetGet(t *testing.T) {
	mr, cache := newRedisCache(t)
	ctx := context.Background()

	var miss Dashboard
	if cache.Get(ctx, "dashboard:week:2024-03-06", &miss) {
		t.Fatal("Get() on empty cache = true")
	}

	want := &Dashboard{
		View:       ViewWeek,
		AnchorDate: "2024-03-06",
		TotalWaste: 6,
		ByItem:     []ItemWaste{{ItemID: "a", ItemName: "Bagel", TotalWaste: 6}},
	}
	cache.Set(ctx, "dashboard:week:2024-03-06", want)
	if !mr.Exists(CachePrefix + "dashboard:week:2024-03-06") {
		t.Fatalf("key not stored under %q prefix: %v", CachePrefix, mr.Keys())
	}

	var got Dashboard
	if !cache.Get(ctx, "dashboard:week:2024-03-06", &got) {
		t.Fatal("Get() after Set() = false")
	}
	if got.AnchorDate != want.AnchorDate || got.TotalWaste != 6 || len(got.ByItem) != 1 || got.ByItem[0].ItemName != "Bagel" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestRedisResultCache_InvalidateKeepsForeignKeys(t *testing.T) {
	mr, cache := newRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		cache.Set(ctx, fmt.Sprintf("plan:2024-03-%02d:%d", i%28+1, i), PlanResult{TargetDate: "2024-03-01"})
	}
	if err := mr.Set("session:abc", "keep"); err != nil {
		t.Fatal(err)
	}

	cache.Invalidate(ctx)

	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != "session:abc" {
		t.Errorf("keys after Invalidate() = %v, want [session:abc]", keys)
	}
	var plan PlanResult
	if cache.Get(ctx, "plan:2024-03-01:0", &plan) {
		t.Error("Get() after Invalidate() = true")
	}
}

func TestRedisResultCache_UnreachableBehavesEmpty(t *testing.T) {
	mr, cache := newRedisCache(t)
	mr.Close()
	ctx := context.Background()

	cache.Set(ctx, "dashboard:day:2024-03-06", Dashboard{})
	var d Dashboard
	if cache.Get(ctx, "dashboard:day:2024-03-06", &d) {
		t.Error("Get() with Redis down = true")
	}
	cache.Invalidate(ctx)
}
