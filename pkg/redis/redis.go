package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil se re-exporta para que los servicios distingan clave-ausente de error
var Nil = redis.Nil

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient crea una nueva instancia del cliente Redis
func NewRedisClient(addr, password string, db int) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Verificar conexión
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("❌ Error conectando a Redis: %v", err)
	}

	log.Println("✅ Conexión exitosa a Redis")

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}
}

// Get obtiene el valor de una clave
func (r *RedisClient) Get(key string) (string, error) {
	return r.client.Get(r.ctx, key).Result()
}

// Set guarda un valor con expiración opcional (0 = sin expiración)
func (r *RedisClient) Set(key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(r.ctx, key, value, expiration).Err()
}

// Del elimina una o más claves
func (r *RedisClient) Del(keys ...string) error {
	return r.client.Del(r.ctx, keys...).Err()
}

// Exists indica si la clave existe
func (r *RedisClient) Exists(key string) (bool, error) {
	n, err := r.client.Exists(r.ctx, key).Result()
	return n > 0, err
}

// AddToSet agrega miembros a un set
func (r *RedisClient) AddToSet(key string, members ...interface{}) error {
	return r.client.SAdd(r.ctx, key, members...).Err()
}

// RemoveFromSet quita miembros de un set
func (r *RedisClient) RemoveFromSet(key string, members ...interface{}) error {
	return r.client.SRem(r.ctx, key, members...).Err()
}

// GetSetMembers obtiene todos los miembros de un set
func (r *RedisClient) GetSetMembers(key string) ([]string, error) {
	return r.client.SMembers(r.ctx, key).Result()
}

// GetKeysByPattern busca claves que coincidan con un patrón
func (r *RedisClient) GetKeysByPattern(pattern string) ([]string, error) {
	return r.client.Keys(r.ctx, pattern).Result()
}

// HIncrBy incrementa un campo numérico de un hash
func (r *RedisClient) HIncrBy(key, field string, incr int64) (int64, error) {
	return r.client.HIncrBy(r.ctx, key, field, incr).Result()
}

// HGetAll obtiene todos los campos de un hash
func (r *RedisClient) HGetAll(key string) (map[string]string, error) {
	return r.client.HGetAll(r.ctx, key).Result()
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck() error {
	_, err := r.client.Ping(r.ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %v", err)
	}
	return nil
}
