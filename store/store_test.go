package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/ss13community/banwatch/domain"
	"github.com/ss13community/banwatch/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestEnsureSource_CreatesWhenMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	mock.ExpectQuery("SELECT \\* FROM `ban_sources`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ban_sources`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	source, err := gw.EnsureSource(context.Background(), "robusta")
	assert.NoError(t, err)
	assert.Equal(t, "robusta", source.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitUpserts_InsertWritesBanAndEvent(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	toInsert := []domain.Ban{
		{
			SourceID: 1,
			Ckey:     "somectkey",
			BanType:  domain.BanTypeServer,
			BannedOn: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			BannedBy: "adminckey",
			Reason:   "griefing",
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `bans`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ban_events`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := gw.CommitUpserts(context.Background(), toInsert, nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitDeletes_WritesEventBeforeRemovingRows(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ban_events`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM `job_bans`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `bans`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := gw.CommitDeletes(context.Background(), []uint{42}, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitDeletes_EmptyIDsSkipsTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	deleted, err := gw.CommitDeletes(context.Background(), nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitUpserts_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	toInsert := []domain.Ban{{SourceID: 1, Ckey: "a", BanType: domain.BanTypeServer, BannedOn: time.Now(), BannedBy: "b"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `bans`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := gw.CommitUpserts(context.Background(), toInsert, nil, time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitUpserts_SurvivesLaterDeleteFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	gw := store.New(db)

	toInsert := []domain.Ban{{SourceID: 1, Ckey: "a", BanType: domain.BanTypeServer, BannedOn: time.Now(), BannedBy: "b"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `bans`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `ban_events`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := gw.CommitUpserts(context.Background(), toInsert, nil, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ban_events`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = gw.CommitDeletes(context.Background(), []uint{42}, time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
