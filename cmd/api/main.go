package main

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"github.com/medtrack/medtrack-api/internal/config"
	"github.com/medtrack/medtrack-api/internal/logging"
	"github.com/medtrack/medtrack-api/internal/media"
	"github.com/medtrack/medtrack-api/internal/queue"
	miniorepo "github.com/medtrack/medtrack-api/internal/repository/minio"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
	"github.com/medtrack/medtrack-api/internal/repository/postgres"
	"github.com/medtrack/medtrack-api/internal/service"
	transport "github.com/medtrack/medtrack-api/internal/transport/http"
	"github.com/medtrack/medtrack-api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(log.Writer(), writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	medicineRepo := postgres.NewMedicineRepo(db)
	reminderRepo := postgres.NewReminderRepo(db)

	var storage ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("connect to minio: %v", err)
		}
		ensureBucket(client, cfg.MinIOBucket)
		storage = miniorepo.NewStorage(client)
	} else {
		log.Println("MINIO_ENDPOINT not set, medicine image uploads disabled")
	}

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, jwtManager, cfg.SessionTTL)
	userService := service.NewUserService(userRepo)

	medicineService := service.NewMedicineService(medicineRepo, storage, service.MedicineServiceConfig{
		Bucket:            cfg.MinIOBucket,
		PublicBaseURL:     cfg.MinIOPublicURL,
		MaxImageBytes:     cfg.MedicineImageMax,
		ImageProcessor:    media.NewFFMPEGProcessor(cfg.FFMPEGPath, cfg.MedicineImageDim),
		ImageMaxDimension: cfg.MedicineImageDim,
	})

	publisher := queuePublisher(cfg)
	reminderService := service.NewReminderService(reminderRepo, medicineRepo, publisher, cfg.StockAlertThreshold, medicineService.ImageURL)

	e := transport.NewRouter(cfg.AllowOrigins)
	e.Use(transport.RateLimit(cfg, redisClient(cfg)))

	transport.RegisterAuth(e, authService, userService)
	transport.RegisterUsers(e, authService, userService)
	transport.RegisterMedicines(e, authService, medicineService)
	transport.RegisterReminders(e, authService, reminderService)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func ensureBucket(client *minio.Client, bucket string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Fatalf("check bucket %s: %v", bucket, err)
	}
	if exists {
		return
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		log.Fatalf("create bucket %s: %v", bucket, err)
	}
}

// queuePublisher returns nil when AMQP is not configured; the reminder
// service treats a nil publisher as alerts-disabled.
func queuePublisher(cfg config.Config) *queue.Publisher {
	if cfg.AMQPURL == "" {
		log.Println("AMQP_URL not set, stock alerts disabled")
		return nil
	}
	return queue.NewPublisher(cfg.AMQPURL)
}

// redisClient pings once at startup and returns nil on failure so rate
// limiting degrades to a pass-through instead of failing requests.
func redisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, rate limiting disabled: %v", err)
		return nil
	}
	return client
}
