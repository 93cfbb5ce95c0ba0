package setting

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(&models.Setting{}), "failed to migrate test database")

	return db
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Setting{Name: "site_name", Value: []byte("My Site")}).Error)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		expectedError error
		expectedValue []byte
	}{
		{name: "nil database", dbParam: nil, settingName: "test", expectedError: ErrDBNil},
		{name: "empty name", dbParam: db, settingName: "", expectedError: ErrSettingNameEmpty},
		{name: "setting not found", dbParam: db, settingName: "nonexistent", expectedError: ErrSettingNotFound},
		{name: "successful get", dbParam: db, settingName: "site_name", expectedValue: []byte("My Site")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Get(ctx, tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, s.Name)
			assert.Equal(t, tc.expectedValue, s.Value)
		})
	}
}

func TestSet_Upserts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first, err := Set(ctx, db, "footer", []byte(`{"a":1}`))
	require.NoError(t, err)

	second, err := Set(ctx, db, "footer", []byte(`{"a":2}`))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []byte(`{"a":2}`), second.Value)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = Set(ctx, db, "", nil)
	require.ErrorIs(t, err, ErrSettingNameEmpty)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := Set(ctx, db, "gone", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, Delete(ctx, db, "gone"))
	require.ErrorIs(t, Delete(ctx, db, "gone"), ErrSettingNotFound)
	require.ErrorIs(t, Delete(ctx, nil, "gone"), ErrDBNil)
}

func TestJSONRoundTrip(t *testing.T) {
	type sample struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	ctx := context.Background()
	db := setupTestDB(t)

	require.NoError(t, SaveJSON(ctx, db, "sample", &sample{Title: "hello", Count: 3}))

	got, err := LoadJSON[sample](ctx, db, "sample")
	require.NoError(t, err)
	assert.Equal(t, &sample{Title: "hello", Count: 3}, got)

	_, err = LoadJSON[sample](ctx, db, "missing")
	require.ErrorIs(t, err, ErrSettingNotFound)

	_, err = Set(ctx, db, "broken", []byte("{"))
	require.NoError(t, err)

	_, err = LoadJSON[sample](ctx, db, "broken")
	require.Error(t, err)
}
