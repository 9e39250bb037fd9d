package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a miniredis instance for testing Lua scripts
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestAppendRecordScript(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	defer mr.Close()

	ctx := context.Background()
	seqKey := "screentime:seq:nudges"
	recordsKey := "screentime:nudges"

	for want := int64(1); want <= 3; want++ {
		id, err := client.Eval(ctx, appendRecordScript, []string{seqKey, recordsKey}, `{"trigger_reason":"x"}`).Int64()
		if err != nil {
			t.Fatalf("Script execution failed: %v", err)
		}
		if id != want {
			t.Errorf("Expected id=%d, got %d", want, id)
		}
	}

	n, err := client.HLen(ctx, recordsKey).Result()
	if err != nil {
		t.Fatalf("HLEN failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 records, got %d", n)
	}

	value, err := client.HGet(ctx, recordsKey, "2").Result()
	if err != nil {
		t.Fatalf("HGET failed: %v", err)
	}
	if value != `{"trigger_reason":"x"}` {
		t.Errorf("Unexpected stored payload: %s", value)
	}
}

func TestInitAccountScript(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	defer mr.Close()

	ctx := context.Background()
	if err := client.Set(ctx, "screentime:profile:1", "existing", 0).Err(); err != nil {
		t.Fatalf("SET failed: %v", err)
	}

	created, err := client.Eval(ctx, initAccountScript,
		[]string{"screentime:profile:1", "screentime:settings:1"}, "default-profile", "default-settings").Int64()
	if err != nil {
		t.Fatalf("Script execution failed: %v", err)
	}
	if created != 1 {
		t.Errorf("Expected 1 created key, got %d", created)
	}

	profile, _ := mr.Get("screentime:profile:1")
	if profile != "existing" {
		t.Errorf("Expected existing profile to be kept, got %s", profile)
	}
	settings, _ := mr.Get("screentime:settings:1")
	if settings != "default-settings" {
		t.Errorf("Expected default settings, got %s", settings)
	}
}
