package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Caisse-api/internal/application/authz"
	"github.com/jhoicas/Caisse-api/pkg/config"
)

var _ authz.PermissionCache = (*RedisPermissionCache)(nil)

const defaultKeyPrefix = "caisse:perms:"

// RedisPermissionCache guarda el conjunto efectivo de permisos por usuario como JSON con TTL.
type RedisPermissionCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisPermissionCache conecta con Redis y verifica la conexión.
func NewRedisPermissionCache(ctx context.Context, cfg config.RedisConfig) (*RedisPermissionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewRedisPermissionCacheWithClient(client, "", cfg.PermissionTTL), nil
}

// NewRedisPermissionCacheWithClient usa un cliente existente. keyPrefix vacío usa el prefijo por defecto.
func NewRedisPermissionCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPermissionCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPermissionCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisPermissionCache) key(userID string) string {
	return c.keyPrefix + userID
}

// Get devuelve el conjunto cacheado o nil si no está.
func (c *RedisPermissionCache) Get(ctx context.Context, userID string) (*authz.PermissionSet, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer permisos cacheados: %w", err)
	}
	var set authz.PermissionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		// Entrada corrupta: se trata como ausente y se recalcula.
		_ = c.client.Del(ctx, c.key(userID)).Err()
		return nil, nil
	}
	return &set, nil
}

// Set guarda el conjunto con el TTL configurado.
func (c *RedisPermissionCache) Set(ctx context.Context, userID string, set *authz.PermissionSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("serializar permisos: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("guardar permisos cacheados: %w", err)
	}
	return nil
}

// Invalidate borra el conjunto del usuario.
func (c *RedisPermissionCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidar permisos cacheados: %w", err)
	}
	return nil
}

// Close cierra el cliente.
func (c *RedisPermissionCache) Close() error {
	return c.client.Close()
}
