package locations

import (
	"context"
	"testing"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/pkg/emr_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = string(raw)
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeRedis) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) DeleteByPattern(_ context.Context, _ string) error {
	return nil
}

func (f *fakeRedis) TrySetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.data[key] = string(raw)
	return true, nil
}

type fakeLocationClient struct {
	locations []emr_dto.Location
	listCalls int
}

func (f *fakeLocationClient) ListLocations(_ context.Context) ([]emr_dto.Location, error) {
	f.listCalls++
	return f.locations, nil
}

func TestListLocations(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*locationUsecase, *fakeLocationClient) {
		client := &fakeLocationClient{locations: []emr_dto.Location{
			{UUID: "99999999-0000-0000-0000-000000000001", Name: "Main Clinic"},
			{UUID: "99999999-0000-0000-0000-000000000002", Name: "Satellite Clinic"},
		}}
		usecase := &locationUsecase{
			LocationEMRClient: client,
			RedisRepository:   newFakeRedis(),
			InternalConfig: &config.InternalConfig{
				Cache: config.Cache{CatalogTTLInMinutes: 10},
			},
			Log: zap.NewNop(),
		}
		return usecase, client
	}

	t.Run("maps the catalog", func(t *testing.T) {
		usecase, _ := newFixture()

		locations, err := usecase.ListLocations(ctx)
		require.NoError(t, err)
		require.Len(t, locations, 2)
		assert.Equal(t, "Main Clinic", locations[0].Name)
		assert.Equal(t, "Satellite Clinic", locations[1].Name)
	})

	t.Run("serves repeat calls from cache", func(t *testing.T) {
		usecase, client := newFixture()

		_, err := usecase.ListLocations(ctx)
		require.NoError(t, err)
		_, err = usecase.ListLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, client.listCalls)
	})
}
