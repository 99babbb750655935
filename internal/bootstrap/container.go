package bootstrap

import (
	"context"
	"time"

	"lumina-be/internal/config"
	"lumina-be/internal/controller"
	"lumina-be/internal/pkg/logger"
	"lumina-be/internal/pkg/serverutils"
	"lumina-be/internal/pkg/token"
	"lumina-be/internal/repository/cache"
	"lumina-be/internal/repository/unitofwork"
	"lumina-be/internal/serializer"
	"lumina-be/internal/service"
	"lumina-be/pkg/events"
	pktNats "lumina-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController controller.INoteController
	AuthController controller.IAuthController
	UserController controller.IUserController

	// Resolves the bearer token on every request that carries one.
	AuthMiddleware fiber.Handler

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	noteSerializer := serializer.NewNoteSerializer(cfg.DisplayLocation())
	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// 2. Infrastructure
	tokenCache := c.newTokenCache(cfg.Cache, sysLogger)
	publisher := c.newPublisher(cfg.Events, sysLogger)

	// 3. Services
	authService := service.NewAuthService(uowFactory, tokens, tokenCache, cfg.Cache.TokenTTL, publisher, sysLogger)
	noteService := service.NewNoteService(uowFactory, noteSerializer, publisher, sysLogger)
	userService := service.NewUserService(uowFactory, noteSerializer, publisher, sysLogger)

	// 4. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.NoteController = controller.NewNoteController(noteService)
	c.UserController = controller.NewUserController(userService)
	c.AuthMiddleware = serverutils.OptionalAuth(authService)

	return c
}

// Close releases connections opened by the container.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func (c *Container) newTokenCache(cfg config.CacheConfig, log logger.ILogger) cache.TokenCache {
	if cfg.RedisURL == "" {
		return cache.NewMemoryTokenCache(cfg.TokenTTL)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, falling back to in-memory token cache", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return cache.NewMemoryTokenCache(cfg.TokenTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	log.Info("BOOTSTRAP", "Using Redis token cache", nil)
	return cache.NewRedisTokenCache(rdb, cfg.TokenTTL, log)
}

// newPublisher returns nil when events are not configured. The nil must
// stay an untyped interface so services can tell.
func (c *Container) newPublisher(cfg config.EventsConfig, log logger.ILogger) events.Publisher {
	if cfg.NatsURL == "" {
		log.Info("BOOTSTRAP", "NATS_URL not set, events disabled", nil)
		return nil
	}

	pub, err := pktNats.NewPublisher(cfg.NatsURL, log)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to NATS publisher, events disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	c.closers = append(c.closers, pub.Close)
	return pub
}
