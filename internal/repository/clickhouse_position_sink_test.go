package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"AstroChart/internal/domain/models"
	pkgch "AstroChart/pkg/clickhouse"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionRows(t *testing.T) {
	c := sampleChart()
	c.Planets = append(c.Planets, models.BodyPosition{Name: "Ascendant", Kind: models.PointAngle, Longitude: 155.2, Sign: models.Virgo})

	rows := PositionRows(c)
	require.Len(t, rows, 2)
	assert.Equal(t, uint8(10), rows[0].House)
	assert.Equal(t, "Taurus", rows[0].Sign)
	assert.Equal(t, "body", rows[0].Kind)
	assert.Equal(t, uint8(0), rows[1].House)
	assert.Equal(t, "angle", rows[1].Kind)
	assert.Equal(t, c.ID, rows[1].ChartID)
}

func TestCHPositionSink_StoreBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sink := NewCHPositionSink(pkgch.NewClientFromDB(db), "", nil)

	rows := PositionRows(sampleChart())
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO astro.chart_positions"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sink.StoreBatch(context.Background(), append(rows, nil)))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NoError(t, sink.StoreBatch(context.Background(), nil))
}

func TestCHPositionSink_StoreBatchFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sink := NewCHPositionSink(pkgch.NewClientFromDB(db), "positions", nil)
	sink.retries = 0

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO positions").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = sink.StoreBatch(context.Background(), PositionRows(sampleChart()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
