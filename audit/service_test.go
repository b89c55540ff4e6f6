package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { return zap.NewNop() }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{
		TraceID:    "trace-123",
		AccountID:  7,
		Action:     "checkInHabit",
		LoadingKey: "habit-h1",
		Patch:      map[string]int{"coins": 10},
		Version:    3,
		Duration:   42 * time.Millisecond,
	})

	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, int64(7), logs[0].AccountID)
	assert.Equal(t, "checkInHabit", logs[0].Action)
	assert.Equal(t, "habit-h1", logs[0].LoadingKey)
	assert.JSONEq(t, `{"coins":10}`, string(logs[0].Patch))
	assert.Equal(t, uint64(3), logs[0].Version)
	assert.Equal(t, 42, logs[0].DurationMs)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < 250; i++ {
		svc.Log(Entry{Action: "batch", AccountID: 1})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestRecent_NewestFirstPerAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{Action: "first", AccountID: 1})
	svc.Log(Entry{Action: "second", AccountID: 1})
	svc.Log(Entry{Action: "other", AccountID: 2})
	svc.Stop(context.Background())

	logs, err := svc.Recent(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "second", logs[0].Action)
	assert.Equal(t, "first", logs[1].Action)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_AfterStopIsDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Stop(context.Background())

	assert.NotPanics(t, func() { svc.Log(Entry{Action: "late"}) })

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestLog_FloodDoesNotBlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*queueSize; i++ {
			svc.Log(Entry{Action: "flood"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Log blocked on a full queue")
	}
	svc.Stop(context.Background())
}
