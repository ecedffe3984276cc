package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyURI is returned by NewConnector when no connection string is set.
var ErrEmptyURI = errors.New("mongo: connection string is empty")

// Dialer opens a client for uri and verifies it is reachable.
type Dialer func(ctx context.Context, uri string) (*mongo.Client, error)

// Connector lazily opens one MongoDB client and hands out the same database
// handle to every caller. A failed attempt leaves it unconnected so the next
// call tries again.
type Connector struct {
	uri    string
	dbName string
	dial   Dialer

	group  singleflight.Group
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewConnector(uri, dbName string) (*Connector, error) {
	return NewConnectorWithDialer(uri, dbName, DialMongo)
}

func NewConnectorWithDialer(uri, dbName string, dial Dialer) (*Connector, error) {
	if uri == "" {
		return nil, ErrEmptyURI
	}
	return &Connector{uri: uri, dbName: dbName, dial: dial}, nil
}

// DialMongo connects and pings the primary.
func DialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureConnected returns the database handle, connecting on first use.
// Concurrent first calls share a single connection attempt.
func (c *Connector) EnsureConnected(ctx context.Context) (*mongo.Database, error) {
	if db := c.current(); db != nil {
		return db, nil
	}

	// The attempt is shared, so one caller's cancellation must not fail the others.
	dialCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("connect", func() (interface{}, error) {
		if db := c.current(); db != nil {
			return db, nil
		}
		client, err := c.dial(dialCtx, c.uri)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.client = client
		c.db = client.Database(c.dbName)
		return c.db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Database), nil
}

// Connected reports whether a client is currently held.
func (c *Connector) Connected() bool {
	return c.current() != nil
}

// Close disconnects the client, if any.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client, c.db = nil, nil
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (c *Connector) current() *mongo.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}
