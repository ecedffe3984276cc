package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// lazyClient builds a client without contacting a server.
func lazyClient(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func TestNewConnectorRejectsEmptyURI(t *testing.T) {
	_, err := NewConnector("", "todolist")
	assert.ErrorIs(t, err, ErrEmptyURI)
}

func TestEnsureConnectedMemoizes(t *testing.T) {
	var dials int32
	c, err := NewConnectorWithDialer("mongodb://127.0.0.1:27017", "todolist", func(ctx context.Context, uri string) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		return lazyClient(ctx, uri)
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	first, err := c.EnsureConnected(context.Background())
	require.NoError(t, err)
	second, err := c.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "todolist", first.Name())
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	assert.True(t, c.Connected())
}

func TestEnsureConnectedSharesInFlightAttempt(t *testing.T) {
	var dials int32
	c, err := NewConnectorWithDialer("mongodb://127.0.0.1:27017", "todolist", func(ctx context.Context, uri string) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		time.Sleep(50 * time.Millisecond)
		return lazyClient(ctx, uri)
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	const callers = 16
	dbs := make([]*mongo.Database, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := c.EnsureConnected(context.Background())
			assert.NoError(t, err)
			dbs[i] = db
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	for _, db := range dbs {
		assert.Same(t, dbs[0], db)
	}
}

func TestEnsureConnectedRetriesAfterFailure(t *testing.T) {
	var dials int32
	boom := errors.New("connection refused")
	c, err := NewConnectorWithDialer("mongodb://127.0.0.1:27017", "todolist", func(ctx context.Context, uri string) (*mongo.Client, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, boom
		}
		return lazyClient(ctx, uri)
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	_, err = c.EnsureConnected(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Connected())

	db, err := c.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
}

func TestCloseResetsConnector(t *testing.T) {
	c, err := NewConnectorWithDialer("mongodb://127.0.0.1:27017", "todolist", lazyClient)
	require.NoError(t, err)

	assert.NoError(t, c.Close(context.Background()), "closing an unused connector is a no-op")

	_, err = c.EnsureConnected(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Close(context.Background()))
	assert.False(t, c.Connected())
}
