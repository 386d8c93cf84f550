package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedFromFileIsIdempotent(t *testing.T) {
	utils.SilenceLogger()
	db, err := gorm.Open(sqlite.Open("file:cmd_seed?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	svcs := services.New(services.Options{DB: db})
	svcs.Accounts.BcryptCost = bcrypt.MinCost
	a := &app{cfg: &config.Config{}, db: db, svcs: svcs}

	t.Setenv("HOST_PASSWORD", "open-sesame")
	path := filepath.Join(t.TempDir(), "restobook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`tables:
  - capacity: 2
  - capacity: 4
  - capacity: 6
staff:
  - username: host
    email: host@restobook.local
    password: ${HOST_PASSWORD}
`), 0o600))

	ctx := context.Background()
	require.NoError(t, seedFromFile(ctx, a, path))
	require.NoError(t, seedFromFile(ctx, a, path))

	var tables, staff int64
	db.Model(&models.Table{}).Count(&tables)
	db.Model(&models.User{}).Where("role = ?", models.RoleStaff).Count(&staff)
	assert.Equal(t, int64(3), tables)
	assert.Equal(t, int64(1), staff)

	user, err := svcs.Accounts.Authenticate(ctx, "host", "open-sesame")
	require.NoError(t, err)
	assert.True(t, user.IsStaff())
}
