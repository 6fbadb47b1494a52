package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/carepoint/scheduling-api/internal/infrastructure/config"
	"github.com/carepoint/scheduling-api/internal/infrastructure/db/mongo"
	"github.com/carepoint/scheduling-api/internal/infrastructure/db/redis"
	"github.com/carepoint/scheduling-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores holds the connections and repositories shared by every command.
type stores struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	redis  *goredis.Client

	users        *mongo.UserRepository
	patients     *mongo.PatientRepository
	doctors      *mongo.DoctorRepository
	availability *mongo.AvailabilityRepository
	appointments *mongo.AppointmentRepository
	audit        *mongo.AuditRepository
	emails       *mongo.EmailRegistry
}

func loadConfig(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})
	return cfg, log, nil
}

// openStores connects to MongoDB, ensures indexes and, when withRedis is set
// and an address is configured, connects to Redis.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger, withRedis bool) (*stores, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "scheduling-api",
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	s := &stores{
		client:       client,
		db:           db,
		users:        mongo.NewUserRepository(db),
		patients:     mongo.NewPatientRepository(db),
		doctors:      mongo.NewDoctorRepository(db),
		availability: mongo.NewAvailabilityRepository(db),
		appointments: mongo.NewAppointmentRepository(db),
		audit:        mongo.NewAuditRepository(db),
		emails:       mongo.NewEmailRegistry(db),
	}

	if err := mongo.EnsureIndexes(ctx, s.users, s.patients, s.doctors, s.availability, s.appointments, s.audit); err != nil {
		s.close(log)
		return nil, err
	}

	if withRedis && cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			s.close(log)
			return nil, err
		}
		s.redis = rdb
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}
	return s, nil
}

func (s *stores) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}
}
