package repository_test

import (
	"context"
	"testing"

	"teamhub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestEventRepository_Delete_Cascades(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	eventRepo := repository.NewEventRepository(gormDB)

	eventID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "events" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "position"}).
			AddRow(eventID.String(), "Sprint 12", 1))
	// Сначала задачи, затем колонки, затем само событие
	mock.ExpectExec(`DELETE FROM "tasks" WHERE event_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "columns" WHERE event_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := eventRepo.Delete(context.Background(), eventID)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	eventRepo := repository.NewEventRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "events" WHERE id = .*`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	// Act
	err := eventRepo.Delete(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	eventRepo := repository.NewEventRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "events" WHERE id = .*`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	event, err := eventRepo.GetByID(context.Background(), uuid.New())

	// Assert
	assert.NoError(t, err) // Метод не возвращает ошибку при отсутствии записи
	assert.Nil(t, event)
	assert.NoError(t, mock.ExpectationsWereMet())
}
