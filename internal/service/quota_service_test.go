package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/internal/repository"
	"github.com/qs3c/vidsum_go_server/internal/testutil"
)

func setupQuotaService(t *testing.T) (*QuotaService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	return NewQuotaService(userRepo, testQuotaConfig()), db
}

func TestQuotaService_GetUsage(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithUsage(3))

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Used)
	assert.Equal(t, 10, usage.Limit)
	assert.Equal(t, 7, usage.Remaining)
	assert.Equal(t, "freemium", usage.SubscriptionStatus)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), usage.ResetDate)
}

func TestQuotaService_GetUsage_UserNotFound(t *testing.T) {
	service, _ := setupQuotaService(t)

	_, err := service.GetUsage(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestQuotaService_ResetIfNeeded_NewDay(t *testing.T) {
	service, db := setupQuotaService(t)

	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	user := testutil.TestUser(t, db, testutil.WithUsage(7), testutil.WithLastResetDate(yesterday))

	reset, err := service.ResetIfNeeded(user.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 10, usage.Remaining)
}

func TestQuotaService_ResetIfNeeded_SameDay_NoOp(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithUsage(5))

	reset, err := service.ResetIfNeeded(user.ID)
	require.NoError(t, err)
	assert.False(t, reset)

	// 同日重复调用仍然不清零
	reset, err = service.ResetIfNeeded(user.ID)
	require.NoError(t, err)
	assert.False(t, reset)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, usage.Used)
}

func TestQuotaService_ResetIfNeeded_MissingResetDate(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithUsage(4))
	// 老数据可能没有重置日期
	require.NoError(t, db.Model(user).Update("last_reset_date", nil).Error)

	reset, err := service.ResetIfNeeded(user.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), usage.ResetDate)
}

func TestQuotaService_ResetIfNeeded_CorruptionGuard(t *testing.T) {
	service, db := setupQuotaService(t)

	// 同日计数越过上限属于损坏数据，强制清零兜底
	user := testutil.TestUser(t, db, testutil.WithUsage(50))

	reset, err := service.ResetIfNeeded(user.ID)
	require.NoError(t, err)
	assert.True(t, reset)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
}

func TestQuotaService_IncrementIfAllowed(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithUsage(9))

	result, err := service.IncrementIfAllowed(user.ID)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 10, result.Usage.Used)
	assert.Equal(t, 0, result.Usage.Remaining)

	// 上限已到，拒绝并返回当前快照
	result, err = service.IncrementIfAllowed(user.ID)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 10, result.Usage.Used)
}

func TestQuotaService_IncrementIfAllowed_ResetsAcrossDays(t *testing.T) {
	service, db := setupQuotaService(t)

	// 昨天用完了配额，今天第一次请求应先清零再计数
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	user := testutil.TestUser(t, db, testutil.WithUsage(10), testutil.WithLastResetDate(yesterday))

	result, err := service.IncrementIfAllowed(user.ID)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Usage.Used)
}

func TestQuotaService_IncrementIfAllowed_Concurrent(t *testing.T) {
	service, db := setupQuotaService(t)

	// SQLite 内存库每个连接是独立数据库，并发测试收敛到单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	user := testutil.TestUser(t, db, testutil.WithUsage(0))

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.IncrementIfAllowed(user.ID)
			if err != nil {
				t.Errorf("Increment failed: %v", err)
				return
			}
			if result.Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowedCount)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, usage.Used)
}

func TestQuotaService_RefundUsage(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithUsage(3))

	require.NoError(t, service.RefundUsage(user.ID))

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Used)
}

func TestQuotaService_FullDayLifecycle(t *testing.T) {
	service, db := setupQuotaService(t)

	// 新用户：10 次成功，第 11 次被拒，跨天后归零
	user := testutil.TestUser(t, db)

	for i := 1; i <= 10; i++ {
		result, err := service.IncrementIfAllowed(user.ID)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "increment %d should be allowed", i)
	}

	result, err := service.IncrementIfAllowed(user.ID)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 10, result.Usage.Used)
	assert.Equal(t, 10, result.Usage.Limit)

	// 模拟日期翻转
	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	require.NoError(t, db.Model(user).Update("last_reset_date", yesterday).Error)

	usage, err := service.GetUsage(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 10, usage.Limit)
}

func TestQuotaService_PremiumUser_LargeLimit(t *testing.T) {
	service, db := setupQuotaService(t)

	user := testutil.TestUser(t, db, testutil.WithPremium(999999), testutil.WithUsage(500))

	result, err := service.IncrementIfAllowed(user.ID)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 501, result.Usage.Used)
	assert.Equal(t, "premium", result.Usage.SubscriptionStatus)
}
