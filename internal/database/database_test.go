package database

import (
	"io"
	"testing"

	"dungji/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "dungji.db?_foreign_keys=on", sqliteDSN("dungji.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", sqliteDSN("file:x?_fk=1"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", quietLogger())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenInMemoryMigratesSchema(t *testing.T) {
	db, err := OpenInMemory(quietLogger())
	require.NoError(t, err)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}
