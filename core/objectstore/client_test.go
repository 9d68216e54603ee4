package objectstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/ss13community/banwatch/core/objectstore"
	"github.com/ss13community/banwatch/core/objectstore/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cfg := objectstore.Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "testkey",
		SecretKey: "testsecret",
		Bucket:    "bansync-archive",
	}

	client, err := objectstore.NewClient(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, client)
}

func TestArchivePayload_NilClientIsNoop(t *testing.T) {
	err := objectstore.ArchivePayload(context.Background(), nil, "bucket", "source", time.Now(), []byte("{}"))
	assert.NoError(t, err)
}

func TestArchivePayload_CreatesBucketWhenMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "bucket", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := objectstore.ArchivePayload(context.Background(), client, "bucket", "robusta", when, []byte(`{"bans":[]}`))
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchivePayload_SkipsBucketCreationWhenPresent(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	err := objectstore.ArchivePayload(context.Background(), client, "bucket", "robusta", time.Now(), []byte("{}"))
	assert.NoError(t, err)
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewArchiver_NilClientYieldsNilArchiver(t *testing.T) {
	assert.Nil(t, objectstore.NewArchiver(nil, "bucket"))
}

func TestNewArchiver_ArchivesThroughClient(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "bucket").Return(true, nil)
	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	archiver := objectstore.NewArchiver(client, "bucket")
	require.NotNil(t, archiver)

	err := archiver.Archive(context.Background(), "robusta", []byte(`not json`))
	assert.NoError(t, err)
	client.AssertExpectations(t)
}
