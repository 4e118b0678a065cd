package dataset

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLoad(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantLen   int
		wantErr   bool
	}{
		{
			name: "returns rows in id order",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "proverb", "translation", "wisdom"}).
					AddRow(1, "p1", "t1", "w1").
					AddRow(5, "p5", "t5", "w5")
				mock.ExpectQuery("SELECT id, proverb, translation, wisdom FROM proverbs ORDER BY id").WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, proverb, translation, wisdom FROM proverbs").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			src := Postgres{DB: sqlx.NewDb(db, "postgres")}
			got, err := src.Load(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, int64(1), got[0].ID)
			assert.Equal(t, "t5", got[1].Translation)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := []Record{
		{ID: 1, Proverb: "p1", Translation: "t1", Wisdom: "w1"},
		{ID: 2, Proverb: "p2", Translation: "t2", Wisdom: "w2"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proverbs").
		WithArgs(int64(1), "p1", "t1", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO proverbs").
		WithArgs(int64(2), "p2", "t2", "w2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := Seed(context.Background(), sqlx.NewDb(db, "postgres"), records)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO proverbs").WillReturnError(fmt.Errorf("boom"))
	mock.ExpectRollback()

	_, err = Seed(context.Background(), sqlx.NewDb(db, "postgres"), []Record{{ID: 9}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM proverbs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := Count(context.Background(), sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
