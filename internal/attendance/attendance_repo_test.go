package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestRepository_WithTxWritesOnTransaction(t *testing.T) {
	// Two independent connections: the pool behind gorm and the one
	// supplying the transaction. The insert must land on the
	// transaction, with the pool untouched.
	poolConn, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer poolConn.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: poolConn}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	assert.NoError(t, err)

	txConn, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txConn.Close()

	rowID := uuid.New()
	txMock.ExpectBegin()
	txMock.ExpectQuery(`INSERT INTO "attendance_punches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rowID.String()))
	txMock.ExpectCommit()

	tx, err := txConn.Begin()
	assert.NoError(t, err)

	qtx, err := NewRepository(gdb).WithTx(tx)
	assert.NoError(t, err)

	row := &Punch{
		ID:         rowID,
		CompanyID:  uuid.New(),
		EmployeeID: uuid.New(),
		Type:       "check_in",
		PunchedAt:  time.Now().UTC(),
		Latitude:   20.2975,
		Longitude:  85.8260,
		Source:     "AGENT",
	}
	assert.NoError(t, qtx.Create(context.Background(), row))
	assert.NoError(t, tx.Commit())

	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet(), "pool connection must see no statements")
}
