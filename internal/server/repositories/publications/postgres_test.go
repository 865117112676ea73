package publications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrovs/archivegate/internal/archive"
)

func testArchive() *archive.Archive {
	return &archive.Archive{ID: 1, Distribution: "ubuntu", Name: "primary"}
}

func testSeries() *archive.DistroSeries {
	return &archive.DistroSeries{Distribution: "ubuntu", Name: "questing"}
}

func TestPublishedSources(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"package", "version", "component", "section", "pocket", "status", "created_at",
	}).
		AddRow("hello", "1.0-2", "main", "devel", "Release", "published", now).
		AddRow("hello", "1.0-1", "main", "devel", "Release", "published", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT package, version, component, section, pocket, status, created_at").
		WithArgs(int64(1), "questing", "hello", "Release", true).
		WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	pubs, err := repo.PublishedSources(context.Background(), testArchive(), testSeries(),
		"hello", archive.PocketRelease, true)
	require.NoError(t, err)

	require.Len(t, pubs, 2)
	assert.Equal(t, "1.0-2", pubs[0].Version, "newest first")
	assert.Equal(t, "main", pubs[0].Component)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishedSources_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT package, version, component, section, pocket, status, created_at").
		WithArgs(int64(1), "questing", "nosuch", "Release", false).
		WillReturnRows(sqlmock.NewRows([]string{
			"package", "version", "component", "section", "pocket", "status", "created_at",
		}))

	repo := NewPostgresRepository(db)
	pubs, err := repo.PublishedSources(context.Background(), testArchive(), testSeries(),
		"nosuch", archive.PocketRelease, false)
	require.NoError(t, err)
	assert.Empty(t, pubs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishedBinaries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"package", "version", "component", "section", "priority", "architecture",
		"pocket", "status", "created_at",
	}).AddRow("hello", "1.0-1", "main", "devel", "optional", "amd64", "Release", "published", time.Now())

	mock.ExpectQuery("SELECT package, version, component, section, priority, architecture").
		WithArgs(int64(1), "questing", "hello", "amd64", "Release", true).
		WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	pubs, err := repo.PublishedBinaries(context.Background(), testArchive(), testSeries(),
		"hello", "amd64", archive.PocketRelease, true)
	require.NoError(t, err)

	require.Len(t, pubs, 1)
	assert.Equal(t, "optional", pubs[0].Priority)
	assert.Equal(t, "amd64", pubs[0].Architecture)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishedSources_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT package").WillReturnError(errors.New("connection refused"))

	repo := NewPostgresRepository(db)
	_, err = repo.PublishedSources(context.Background(), testArchive(), testSeries(),
		"hello", archive.PocketRelease, true)
	require.Error(t, err)
}
