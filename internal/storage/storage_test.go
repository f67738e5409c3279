package storage_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *storage.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return storage.NewStorageService(db)
}

func ptr(s string) *string { return &s }

func create(t *testing.T, s *storage.Service, msg string, at time.Time) *models.Complaint {
	t.Helper()
	s.Now = func() time.Time { return at }
	c, err := s.CreateComplaint(context.Background(), models.NewComplaint{
		ChatID:         "chat-1",
		SenderUsername: ptr("alice"),
		Message:        msg,
		ModelReply:     ptr("Baik kak"),
	})
	require.NoError(t, err)
	return c
}

func TestCreateComplaint_StartsPending(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	c, err := s.CreateComplaint(ctx, models.NewComplaint{
		ChatID:          "42",
		SenderID:        ptr("7"),
		SenderUsername:  ptr("alice"),
		Message:         "tolong cek kode 12345 saya kak",
		ModelReply:      ptr("Baik kak, kami cek"),
		MatchedKeywords: []string{"cek", "tolong", "kode"},
	})
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Nil(t, c.RepliedAt)
	assert.Nil(t, c.ReplyText)
	assert.Nil(t, c.ReplyMedia)

	got, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "tolong cek kode 12345 saya kak", got.Message)
	assert.Equal(t, []string{"cek", "tolong", "kode"}, []string(got.MatchedKeywords))
	assert.Equal(t, "7", *got.SenderID)

	second := create(t, s, "tolong lagi", time.Now())
	assert.Greater(t, second.ID, c.ID)
}

func TestGetComplaint_NotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.GetComplaint(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkReplied(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := create(t, s, "tolong", time.Now())

	replyAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return replyAt }

	done, err := s.MarkReplied(ctx, c.ID, ptr("Sudah kami proses"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)
	require.NotNil(t, done.RepliedAt)
	assert.True(t, replyAt.Equal(*done.RepliedAt))
	assert.Equal(t, "Sudah kami proses", *done.ReplyText)
	assert.Nil(t, done.ReplyMedia)

	s.Now = func() time.Time { return replyAt.Add(time.Hour) }
	again, err := s.MarkReplied(ctx, c.ID, ptr("Koreksi"), ptr("a.png"))
	require.NoError(t, err)
	assert.Equal(t, "Koreksi", *again.ReplyText, "store level overwrites")
	assert.Equal(t, "a.png", *again.ReplyMedia)

	_, err = s.MarkReplied(ctx, 12345, ptr("x"), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkDeleted_HidesFromListings(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	pending := create(t, s, "tolong satu", time.Now())
	done := create(t, s, "tolong dua", time.Now())
	_, err := s.MarkReplied(ctx, done.ID, ptr("ok"), nil)
	require.NoError(t, err)

	for _, id := range []uint{pending.ID, done.ID} {
		d, err := s.MarkDeleted(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDeleted, d.Status)
	}

	for _, f := range []models.ComplaintFilter{
		{},
		{Status: models.StatusDone},
		{Status: models.StatusDeleted},
		{Search: "tolong"},
	} {
		rows, err := s.ListComplaints(ctx, f)
		require.NoError(t, err)
		assert.Empty(t, rows, "filter %+v", f)
	}

	got, err := s.GetComplaint(ctx, pending.ID)
	require.NoError(t, err, "soft delete keeps the row")
	assert.Equal(t, models.StatusDeleted, got.Status)

	_, err = s.MarkDeleted(ctx, 4242)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListComplaints_Filters(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	day1 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 23, 59, 0, 0, time.UTC)
	day3 := time.Date(2026, 5, 3, 0, 0, 1, 0, time.UTC)

	a := create(t, s, "Tolong CEK kode 111", day1)
	b := create(t, s, "refund trx 222", day2)
	c := create(t, s, "update pesanan 100%_ok", day3)
	_, err := s.MarkReplied(ctx, b.ID, ptr("done"), nil)
	require.NoError(t, err)

	ids := func(rows []models.Complaint) []uint {
		out := make([]uint, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name   string
		filter models.ComplaintFilter
		want   []uint
	}{
		{"all newest first", models.ComplaintFilter{}, []uint{c.ID, b.ID, a.ID}},
		{"status done", models.ComplaintFilter{Status: models.StatusDone}, []uint{b.ID}},
		{"status pending", models.ComplaintFilter{Status: models.StatusPending}, []uint{c.ID, a.ID}},
		{"start inclusive", models.ComplaintFilter{DateStart: date(2026, 5, 2)}, []uint{c.ID, b.ID}},
		{"end inclusive whole day", models.ComplaintFilter{DateEnd: date(2026, 5, 2)}, []uint{b.ID, a.ID}},
		{"single day", models.ComplaintFilter{DateStart: date(2026, 5, 2), DateEnd: date(2026, 5, 2)}, []uint{b.ID}},
		{"search message case-insensitive", models.ComplaintFilter{Search: "cek KODE"}, []uint{a.ID}},
		{"search model reply", models.ComplaintFilter{Search: "baik"}, []uint{c.ID, b.ID, a.ID}},
		{"search username", models.ComplaintFilter{Search: "ALICE"}, []uint{c.ID, b.ID, a.ID}},
		{"wildcards are literal", models.ComplaintFilter{Search: "%_"}, []uint{c.ID}},
		{"no match", models.ComplaintFilter{Search: "zzz"}, []uint{}},
		{"limit", models.ComplaintFilter{Limit: 1}, []uint{c.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.ListComplaints(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestListComplaints_DropsOversizedMessages(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	ok := create(t, s, "tolong "+strings.Repeat("a ", 400), time.Now())
	create(t, s, "tolong "+strings.Repeat("a", 501), time.Now())

	rows, err := s.ListComplaints(ctx, models.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ok.ID, rows[0].ID)
}

func TestCountPendingOlderThan(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	create(t, s, "tolong lama", now.Add(-3*time.Hour))
	old := create(t, s, "tolong lama juga", now.Add(-2*time.Hour))
	create(t, s, "tolong baru", now.Add(-10*time.Minute))
	_, err := s.MarkReplied(ctx, old.ID, ptr("ok"), nil)
	require.NoError(t, err)

	n, err := s.CountPendingOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMarkReplied_ConcurrentDifferentRows(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, create(t, s, fmt.Sprintf("tolong %d", i), time.Now()).ID)
	}
	s.Now = time.Now

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := s.MarkReplied(ctx, id, ptr(fmt.Sprintf("reply %d", id)), nil)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	rows, err := s.ListComplaints(ctx, models.ComplaintFilter{Status: models.StatusDone})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	for _, r := range rows {
		assert.Equal(t, fmt.Sprintf("reply %d", r.ID), *r.ReplyText)
	}
}

func TestMarkReplied_DeletedStaysDeleted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := create(t, s, "tolong", time.Now())

	_, err := s.MarkDeleted(ctx, c.ID)
	require.NoError(t, err)

	_, err = s.MarkReplied(ctx, c.ID, ptr("halo"), nil)
	assert.ErrorIs(t, err, models.ErrNotPending)

	got, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)
	assert.Nil(t, got.ReplyText)
	assert.Nil(t, got.RepliedAt)

	rows, err := s.ListComplaints(ctx, models.ComplaintFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMarkReplied_OnlyFromExpectedStatus(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := create(t, s, "tolong", time.Now())

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.MarkReplied(ctx, c.ID, ptr(fmt.Sprintf("reply %d", i)), nil, models.StatusPending)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, models.ErrNotPending)
	}
	assert.Equal(t, 1, ok, "exactly one reply wins the pending row")

	again, err := s.MarkReplied(ctx, c.ID, ptr("koreksi"), nil, models.StatusPending, models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, "koreksi", *again.ReplyText)
}
