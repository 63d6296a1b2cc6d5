package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/ayah-auth/pkg/domain"
)

func newFavoritesRepoWithMock(t *testing.T) (*FavoritesRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFavoritesRepository(db), mock
}

var ayatulKursi = domain.Ayah{
	ID:            "2:255",
	VerseKey:      "2:255",
	Surah:         2,
	NumberInSurah: 255,
	Translation:   "Allah! There is no god except Him",
}

func TestFavoritesRepository_Add(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, ayah_id) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), userID, "2:255", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fav, err := repo.Add(context.Background(), userID, ayatulKursi)
	require.NoError(t, err)
	assert.Equal(t, userID, fav.UserID)
	assert.Equal(t, "2:255", fav.Ayah.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoritesRepository_Add_Duplicate(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)

	mock.ExpectExec("INSERT INTO favorites").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Add(context.Background(), uuid.New(), ayatulKursi)
	assert.ErrorIs(t, err, domain.ErrFavoriteExists)
}

func TestFavoritesRepository_ListByUser(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)
	userID := uuid.New()
	payload, err := json.Marshal(ayatulKursi)
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "ayah", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), userID.String(), payload, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM favorites")).
		WithArgs(userID).
		WillReturnRows(rows)

	favorites, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, ayatulKursi, favorites[0].Ayah)
}

func TestFavoritesRepository_ListByUser_BadPayload(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)
	userID := uuid.New()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "ayah", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), userID.String(), []byte("{"), now, now)
	mock.ExpectQuery("FROM favorites").WillReturnRows(rows)

	_, err := repo.ListByUser(context.Background(), userID)
	assert.Error(t, err)
}

func TestFavoritesRepository_Remove(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites WHERE user_id = $1 AND ayah_id = $2")).
		WithArgs(userID, "2:255").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), userID, "2:255"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoritesRepository_Remove_DBError(t *testing.T) {
	repo, mock := newFavoritesRepoWithMock(t)

	mock.ExpectExec("DELETE FROM favorites").
		WillReturnError(errors.New("db down"))

	assert.Error(t, repo.Remove(context.Background(), uuid.New(), "2:255"))
}
