package database

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Conn is a database handle obtained from Gateway.Connect.
type Conn struct {
	Client   *mongo.Client
	Database *mongo.Database

	release func(context.Context) error
	once    sync.Once
}

// NewConn wraps a handle; release runs at most once on Disconnect and may be nil.
func NewConn(client *mongo.Client, db *mongo.Database, release func(context.Context) error) *Conn {
	return &Conn{Client: client, Database: db, release: release}
}

// Disconnect releases the handle. It is a no-op on a nil Conn and on repeated calls.
func (c *Conn) Disconnect(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var err error
	c.once.Do(func() {
		if c.release != nil {
			err = c.release(ctx)
		}
	})
	return err
}
