package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/vidsum_go_server/internal/repository"
	"github.com/qs3c/vidsum_go_server/internal/service"
	"github.com/qs3c/vidsum_go_server/internal/testutil"
)

func TestService_RunNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)
	ledger := service.NewIdempotencyLedger(eventRepo, nil)

	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	stale := testutil.TestUser(t, db, testutil.WithUsage(9), testutil.WithLastResetDate(yesterday))
	fresh := testutil.TestUser(t, db, testutil.WithUsage(2))

	// 一条过期的台账记录和一条新记录
	testutil.TestProcessedEvent(t, db, "evt_old", "customer.subscription.updated",
		time.Now().UTC().AddDate(0, 0, -60))
	require.NoError(t, ledger.Record(context.Background(), "evt_new", "invoice.payment_succeeded"))

	cronService := NewService(userRepo, ledger, 30)
	cronService.RunNow()

	// 跨天计数被清零，当日的保留
	staleUser, err := userRepo.GetByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, staleUser.UsageCount)

	freshUser, err := userRepo.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, freshUser.UsageCount)

	// 台账只清理超过保留期的
	oldSeen, err := ledger.Seen(context.Background(), "evt_old")
	require.NoError(t, err)
	assert.False(t, oldSeen)

	newSeen, err := ledger.Seen(context.Background(), "evt_new")
	require.NoError(t, err)
	assert.True(t, newSeen)
}

func TestService_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewProcessedEventRepository(db)

	cronService := NewService(userRepo, service.NewIdempotencyLedger(eventRepo, nil), 30)
	cronService.Start()
	cronService.Stop()
}
