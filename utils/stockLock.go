package utils

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

const stockLockTTL = 30 * time.Second

// ObtainStockLocks takes best-effort Redis locks on the given variants, in id order.
// The database row lock is authoritative; Redis only keeps concurrent writers of the
// same variant from piling up on it. When Redis is not ready or a lock is held
// elsewhere the caller proceeds without it. The returned release func is never nil.
func ObtainStockLocks(ctx context.Context, variantIds []int, moduleName string, functionName string) func() {
	locker := config.GetRedisLock()
	if locker == nil || len(variantIds) == 0 {
		return func() {}
	}
	logger := config.GetLogger()

	ids := UniqueSlice(variantIds)
	sort.Ints(ids)

	locks := make([]*redislock.Lock, 0, len(ids))
	for _, id := range ids {
		key := fmt.Sprintf("lock:stock:variant:%d", id)
		lock, err := locker.Obtain(ctx, key, stockLockTTL, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
		})
		if errors.Is(err, redislock.ErrNotObtained) {
			logger.WithFields(logrus.Fields{
				"module":     moduleName,
				"funcName":   functionName,
				"variant_id": id,
			}).Warn("could not obtain redis stock lock; relying on row lock")
			continue
		} else if err != nil {
			config.LogError(logger, moduleName, functionName, "Error obtaining redis stock lock", id, err)
			continue
		}
		locks = append(locks, lock)
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			_ = locks[i].Release(context.Background())
		}
	}
}
