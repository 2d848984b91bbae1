package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func slotsUnderTest(t *testing.T) map[string]Slot {
	t.Helper()

	fileSlot, err := NewFileSlot(t.TempDir())
	require.NoError(t, err)

	sqlSlot, err := NewSQLSlot(setupTestDB(t))
	require.NoError(t, err)

	_, client := setupRedis(t)
	redisSlot, err := NewRedisSlot(client)
	require.NoError(t, err)

	return map[string]Slot{"file": fileSlot, "sqlite": sqlSlot, "redis": redisSlot}
}

func TestSlotsReadWriteOverwrite(t *testing.T) {
	for name, slot := range slotsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := slot.Read(ctx, "SAMMS_DB_V1")
			require.ErrorIs(t, err, ErrSlotEmpty)

			require.NoError(t, slot.Write(ctx, "SAMMS_DB_V1", []byte(`{"version":1}`)))
			got, err := slot.Read(ctx, "SAMMS_DB_V1")
			require.NoError(t, err)
			require.JSONEq(t, `{"version":1}`, string(got))

			require.NoError(t, slot.Write(ctx, "SAMMS_DB_V1", []byte(`{"version":2}`)))
			got, err = slot.Read(ctx, "SAMMS_DB_V1")
			require.NoError(t, err)
			require.JSONEq(t, `{"version":2}`, string(got))

			_, err = slot.Read(ctx, "OTHER_KEY")
			require.ErrorIs(t, err, ErrSlotEmpty)
		})
	}
}

func TestSlotBackends(t *testing.T) {
	slots := slotsUnderTest(t)
	require.Equal(t, "file", slots["file"].Backend())
	require.Equal(t, "sqlite", slots["sqlite"].Backend())
	require.Equal(t, "redis", slots["redis"].Backend())
}

func TestFileSlotLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	require.NoError(t, err)

	require.NoError(t, slot.Write(context.Background(), "SAMMS_DB_V1", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "SAMMS_DB_V1.json", entries[0].Name())

	_, err = os.Stat(filepath.Join(dir, "SAMMS_DB_V1.json"))
	require.NoError(t, err)
}

func TestNewFileSlotRejectsEmptyDir(t *testing.T) {
	_, err := NewFileSlot("  ")
	require.Error(t, err)
}
