package di

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	authadapters "kurukshetra_backend/internal/feature/auth/adapters"
	"kurukshetra_backend/internal/platform/config"
	mongoplatform "kurukshetra_backend/internal/platform/mongo"
)

// MongoConnector opens a client. It is a variable in tests.
type MongoConnector func(ctx context.Context, uri string) (*mongo.Client, error)

// NewUserBackends returns the relational and document backends.
// A document backend that cannot be reached is replaced by an unavailable stand-in so the
// process still starts; every write to it is then reported as a dual-sync discrepancy.
// The returned client is nil in that case.
func NewUserBackends(ctx context.Context, cfg config.Config, db *gorm.DB, connect MongoConnector) (relational, document authadapters.UserBackend, client *mongo.Client) {
	relational = authadapters.NewUserGorm(db)

	if connect == nil {
		connect = mongoplatform.Connect
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := connect(ctx, cfg.MongoURI)
	if err != nil {
		slog.Warn("mongo unavailable, document backend disabled", "error", err)
		return relational, authadapters.NewUnavailableBackend(config.BackendMongo, err), nil
	}

	users := authadapters.NewUserMongo(mongoplatform.Users(client, cfg.MongoDB))
	if err := users.EnsureIndexes(ctx); err != nil {
		slog.Warn("mongo index creation failed", "error", err)
	}
	return relational, users, client
}
