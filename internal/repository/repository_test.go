package repository

import (
	"regexp"
	"testing"

	"service-marketplace/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
	}{
		{name: "status still matches", affected: 1},
		{name: "status changed underneath", affected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			id := uuid.New()

			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND status = $4`)).
				WithArgs("accepted", sqlmock.AnyArg(), id, "pending").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			affected, err := NewBookingRepository().UpdateStatus(db, id, entity.BookingStatusPending, entity.BookingStatusAccepted)
			require.NoError(t, err)
			assert.Equal(t, tt.affected, affected)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_DeleteOnlyInDeletableStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "bookings" WHERE id = $1 AND status IN ($2,$3)`)).
		WithArgs(id, "pending", "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := NewBookingRepository().Delete(db, id, entity.DeletableStatuses())
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepository_IncrementCompletionStats(t *testing.T) {
	db, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "providers" SET "completed_services"=completed_services + $1,"total_earnings"=total_earnings + $2 WHERE id = $3`)).
		WithArgs(1, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := NewProviderRepository().IncrementCompletionStats(db, id, decimal.NewFromInt(75))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	user, err := NewUserRepository().FindByEmail(db, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_FindAllFiltersByEntity(t *testing.T) {
	db, mock := setupMockDB(t)
	bookingID := uuid.NewString()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "audit_logs" WHERE entity_type = $1 AND entity_id = $2`)).
		WithArgs(entity.AuditEntityBooking, bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_logs" WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "entity_type", "entity_id"}))

	logs, total, err := NewAuditLogRepository().FindAll(db, entity.AuditLogFilter{
		EntityType: entity.AuditEntityBooking,
		EntityID:   bookingID,
		Page:       1,
		Limit:      20,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_FindByNameCachesRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoleRepository()

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE role_name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_name"}).AddRow(entity.RoleIDProvider, "provider"))

	role, err := repo.FindByName(db, "Provider")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, entity.RoleIDProvider, role.ID)

	again, err := repo.FindByName(db, "provider ")
	require.NoError(t, err)
	assert.Equal(t, role.ID, again.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
