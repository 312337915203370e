package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI              string
	Database         string
	Collection       string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

func ConfigFrom(c internal.MongoConfig) Config {
	return Config{
		URI:              c.URI,
		Database:         c.Database,
		Collection:       c.Collection,
		ConnectTimeout:   c.ConnectTimeout,
		OperationTimeout: c.OperationTimeout,
	}
}

// Client is an explicit, injectable handle on one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the server and verifies it answers a ping.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	ctx, cancel := internal.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return NewClient(cli, cfg.Database), nil
}

// NewClient wraps an already connected driver client.
func NewClient(cli *mongo.Client, database string) *Client {
	return &Client{client: cli, db: cli.Database(database)}
}

func (c *Client) Name() string {
	return c.db.Name()
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
