package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	inErrors "github.com/Alturino/ecfresh/internal/errors"
)

// KV is the durable string store the cart and wishlist are mirrored
// to. ReadString returns ErrKeyAbsent when the key has never been
// written.
type KV interface {
	ReadString(c context.Context, key string) (string, error)
	WriteString(c context.Context, key, value string) error
	DeleteKey(c context.Context, key string) error
}

type redisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) KV {
	return redisKV{client: client}
}

func (kv redisKV) ReadString(c context.Context, key string) (string, error) {
	value, err := kv.client.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", inErrors.ErrKeyAbsent
		}
		return "", fmt.Errorf("failed reading key=%s with error=%w", key, err)
	}
	return value, nil
}

func (kv redisKV) WriteString(c context.Context, key, value string) error {
	if err := kv.client.Set(c, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed writing key=%s with error=%w", key, err)
	}
	return nil
}

func (kv redisKV) DeleteKey(c context.Context, key string) error {
	if err := kv.client.Del(c, key).Err(); err != nil {
		return fmt.Errorf("failed deleting key=%s with error=%w", key, err)
	}
	return nil
}
