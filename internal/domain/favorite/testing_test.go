package favorite

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"weatherdiary/internal/database"
	"weatherdiary/internal/pkg/userlock"
)

func setupTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:favorite_test_%s?mode=memory&cache=shared", name)

	db, err := database.Connect(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := NewRepository(db)
	require.NoError(t, repo.Migrate(t.Context()))
	return repo, db
}

func setupTestService(t *testing.T, opts ...Option) (*Service, *Repository) {
	t.Helper()
	repo, _ := setupTestRepo(t)
	return NewService(repo, userlock.NewKeyedMutex(), time.Second, opts...), repo
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func slotsByID(list []FavoriteLocation) map[int64]int {
	out := make(map[int64]int, len(list))
	for _, f := range list {
		out[f.ID] = f.Slot
	}
	return out
}
