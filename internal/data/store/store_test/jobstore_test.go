package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/internal/data/redisStore"
	"github.com/akolanti/PolicyRAG/internal/data/store"
	"github.com/akolanti/PolicyRAG/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type jobStore interface {
	SaveJob(ctx context.Context, job jobModel.IngestJob) error
	GetJob(ctx context.Context, jobId string) (jobModel.IngestJob, bool)
	DeleteJob(ctx context.Context, jobId string)
}

func TestJobStores_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	stores := map[string]jobStore{
		"redis":    store.NewRedisJobStore(redisStore.NewTestStore(client)),
		"inMemory": store.InitInMemoryJobStore(),
	}

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	testJob := jobModel.IngestJob{
		Id:       "job_abc_123",
		FileName: "policy.pdf",
		Status:   jobModel.JobStatusRunning,
	}

	for name, js := range stores {
		t.Run(name, func(t *testing.T) {
			if err := js.SaveJob(ctx, testJob); err != nil {
				t.Fatalf("SaveJob failed: %v", err)
			}

			got, found := js.GetJob(ctx, testJob.Id)
			if !found {
				t.Fatal("Job was saved but not found")
			}
			if got.FileName != testJob.FileName || got.Status != testJob.Status {
				t.Errorf("Data mismatch! Got %+v, want %+v", got, testJob)
			}

			if _, found := js.GetJob(ctx, "ghost-id"); found {
				t.Error("Expected found=false for non-existent key")
			}

			js.DeleteJob(ctx, testJob.Id)
			if _, found := js.GetJob(ctx, testJob.Id); found {
				t.Error("Job still present after DeleteJob")
			}
		})
	}
}

func TestRedisJobStore_KeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	js := store.NewRedisJobStore(redisStore.NewTestStore(client))

	_ = js.SaveJob(context.Background(), jobModel.IngestJob{Id: "abc"})
	if !mr.Exists("ingest-job:abc") {
		t.Error("expected job stored under its prefixed key")
	}
	if mr.TTL("ingest-job:abc") != config.RedisJobTTL {
		t.Errorf("ttl got %v", mr.TTL("ingest-job:abc"))
	}
}

func TestNewRedisJobStore_NilStore(t *testing.T) {
	if store.NewRedisJobStore(nil) != nil {
		t.Error("expected nil job store without a redis connection")
	}
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	js := store.NewRedisJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.IngestJob{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = js.SaveJob(ctx, job)
			_, _ = js.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := js.GetJob(ctx, "race-job"); !found {
		t.Error("job lost under concurrent writes")
	}
}
