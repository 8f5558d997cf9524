package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	config "github.com/NordCoder/Authly/internal/config/auth-api"
	kafkarepo "github.com/NordCoder/Authly/internal/repository/kafka"
	pg "github.com/NordCoder/Authly/internal/repository/postgres"
	rds "github.com/NordCoder/Authly/internal/repository/redis"
	"github.com/NordCoder/Authly/internal/security"
	authsvc "github.com/NordCoder/Authly/internal/service/auth"
	"github.com/NordCoder/Authly/internal/transport/httpapi"
)

// deps holds everything the HTTP server needs plus the handles that must be
// closed on shutdown.
type deps struct {
	db       *pg.DB
	producer *kafkarepo.Producer
	redis    *redis.Client

	Router httpapi.RouterDeps
}

func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*deps, error) {
	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	rdb, err := rds.NewClient(ctx, cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}

	producer := kafkarepo.NewProducer(cfg.Kafka.Brokers).WithLogger(logger)

	users := pg.NewUserRepo(db)
	cache := rds.NewTokenCache(rdb)
	hasher := security.NewHasher(security.DefaultHashParams())
	codec := security.NewCodec([]byte(cfg.Auth.JWTSecret))

	svc := authsvc.NewService(users, cache, hasher, codec, producer, logger, authsvc.Config{
		AccessTTL:      cfg.Auth.AccessTTL,
		RefreshTTL:     cfg.Auth.RefreshTTL,
		PublishTimeout: cfg.Auth.PublishTimeout,
	})

	return &deps{
		db:       db,
		producer: producer,
		redis:    rdb,
		Router: httpapi.RouterDeps{
			Auth:   svc,
			Codec:  codec,
			Gate:   svc,
			Users:  users,
			Logger: logger,
		},
	}, nil
}

func (d *deps) Health(ctx context.Context) error {
	return d.db.Pool.Ping(ctx)
}

func (d *deps) Close() {
	_ = d.producer.Close()
	_ = d.redis.Close()
	d.db.Close()
}
