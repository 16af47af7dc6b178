package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/go-redis/redis/v8"
)

// 公開商品詳細のread-throughキャッシュ。
// 在庫・価格の変更時はInvalidateで消す。
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func key(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

func (c *ProductCache) Get(ctx context.Context, productID int64) (model.Product, bool) {
	raw, err := c.rdb.Get(ctx, key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, false
	}
	if err != nil {
		// キャッシュ障害は取得失敗扱い（DBへフォールバック）
		return model.Product{}, false
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Product{}, false
	}
	return p, true
}

func (c *ProductCache) Set(ctx context.Context, p model.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key(p.ID), raw, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, productID int64) {
	_ = c.rdb.Del(ctx, key(productID)).Err()
}
