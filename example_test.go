package goRecover_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/store"
	"github.com/MrEthical07/goRecover/store/memory"
)

// ExampleNew builds an engine with a Redis-backed answer limiter.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	hasher, _ := store.NewHasher(goRecover.DefaultConfig().Password)

	engine, err := goRecover.New().
		WithCredentialStore(memory.New(hasher)).
		WithRedis(rdb).
		Build()
	if err != nil {
		return
	}
	defer engine.Close()
}

// ExampleEngine_ConsumeResetToken walks the full recovery protocol.
func ExampleEngine_ConsumeResetToken() {
	ctx := context.Background()
	cfg := goRecover.DefaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	hasher, _ := store.NewHasher(cfg.Password)

	accounts := memory.New(hasher)
	_, _ = accounts.Add(ctx, store.NewAccount{
		Username:   "alice",
		Question:   "pet name?",
		Answer:     "rex",
		Credential: "oldpass123",
	})

	engine, _ := goRecover.New().WithConfig(cfg).WithCredentialStore(accounts).Build()
	defer engine.Close()

	question, _ := engine.SelectChallenge(ctx, "alice")
	token, _ := engine.VerifyChallengeAnswer(ctx, "alice", question, "rex")

	fmt.Println(engine.ConsumeResetToken(ctx, "alice", "newpass123", token))
	err := engine.ConsumeResetToken(ctx, "alice", "newpass123", token)
	fmt.Println(errors.Is(err, goRecover.ErrTokenMissingOrExpired))
	// Output:
	// <nil>
	// true
}

// ExampleEngine_MetricsSnapshot reads in-process counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goRecover.Engine
	snapshot := engine.MetricsSnapshot()
	fmt.Println(snapshot.Counters[goRecover.MetricTokenIssued])
	// Output: 0
}
