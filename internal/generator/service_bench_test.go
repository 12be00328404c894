package generator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/posts"
)

var benchTags = []string{"go", "deploy", "notes"}

func BenchmarkBuildSequential(b *testing.B) {
	benchmarkBuild(b, 1)
}

func BenchmarkBuildConcurrent(b *testing.B) {
	benchmarkBuild(b, 4)
}

func benchmarkBuild(b *testing.B, workers int) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store := newMemoryStore(now)
		for n := 0; n < 24; n++ {
			seedPost(b, store, posts.CreatePostRequest{
				Title:  fmt.Sprintf("Benchmark Post %02d", n),
				Slug:   fmt.Sprintf("benchmark-post-%02d", n),
				Body:   strings.Repeat("benchmark body text ", 40),
				Status: "published",
				Date:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * 6 * time.Hour),
				Tags:   []string{benchTags[n%len(benchTags)]},
			})
		}

		cfg := baseConfig()
		cfg.Workers = workers

		svc := NewService(cfg, Dependencies{
			Posts:    store,
			Renderer: &recordingRenderer{},
			Writer:   newRecordingWriter(),
			Logger:   logging.NoOp(),
		}).(*service)
		svc.now = func() time.Time { return now }

		b.StartTimer()
		_, err := svc.Build(ctx, BuildOptions{})
		b.StopTimer()
		if err != nil {
			b.Fatalf("benchmark build: %v", err)
		}
	}
}
