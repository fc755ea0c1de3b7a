package qdrantDB

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/PolicyRAG/internal/config"
	"github.com/akolanti/PolicyRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once

// GetQdrantClient returns the shared client, or nil when qdrant is unreachable.
func GetQdrantClient(ctx context.Context, host string, port int) *qdrant.Client {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, host, port)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})
	return qdrantInstance
}

func newClient(ctx context.Context, host string, port int) *qdrant.Client {
	if host == "" {
		host = config.QdrantHost
	}
	if port == 0 {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	healthCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectTimeout)
	defer cancel()
	if _, err := client.HealthCheck(healthCtx); err != nil {
		logger.Warn("Qdrant is offline, answer cache disabled", "host", host, "port", port, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Qdrant client created", "host", host, "port", port)
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// recreateCollection drops every point by dropping the collection itself.
func recreateCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if err := client.DeleteCollection(ctx, collectionName); err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return createCollection(ctx, client, collectionName, dimension)
}
