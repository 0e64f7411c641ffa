package repository

import (
	"testing"

	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

func setupTestDB(t *testing.T) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&UserEntity{}, &StudentEntity{}, &ItemEntity{}, &TransactionEntity{}, &PurchaseEntity{})
	require.NoError(t, err)

	return &testDB{
		DB:    pg.NewFromGorm(db, db),
		rawDB: db,
	}
}
