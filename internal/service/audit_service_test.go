package service

import (
	"context"
	"errors"
	"testing"

	"service-marketplace/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type captureAuditRepo struct {
	created []*entity.AuditLog
	err     error
}

func (r *captureAuditRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, log)
	return nil
}

func (r *captureAuditRepo) FindAll(*gorm.DB, entity.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	return nil, 0, nil
}

func (r *captureAuditRepo) FindByID(*gorm.DB, int64) (*entity.AuditLog, error) {
	return nil, nil
}

func newAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db
}

func TestAuditService_LogUpdateStoresEntityAndSnapshots(t *testing.T) {
	repo := &captureAuditRepo{}
	svc := NewAuditService(newTestLogger(), repo)
	userID := uuid.New()
	bookingID := uuid.New()

	view := map[string]interface{}{"status": "pending"}
	err := svc.LogUpdate(context.Background(), newAuditTestDB(t), &userID, entity.AuditActionBookingTransition,
		entity.AuditEntityBooking, bookingID.String(), view, map[string]interface{}{"status": "accepted"})
	require.NoError(t, err)
	view["status"] = "mutated"

	require.Len(t, repo.created, 1)
	got := repo.created[0]
	assert.Equal(t, &userID, got.UserID)
	assert.Equal(t, entity.AuditActionBookingTransition, got.Action)
	assert.Equal(t, entity.AuditEntityBooking, got.EntityType)
	assert.Equal(t, bookingID.String(), got.EntityID)
	assert.Equal(t, map[string]interface{}{"status": "pending"}, got.Metadata["old_value"])
	assert.Equal(t, map[string]interface{}{"status": "accepted"}, got.Metadata["new_value"])
}

func TestAuditService_CreateAndDeleteOmitMissingSide(t *testing.T) {
	repo := &captureAuditRepo{}
	svc := NewAuditService(newTestLogger(), repo)
	db := newAuditTestDB(t)

	require.NoError(t, svc.LogCreate(context.Background(), db, nil, entity.AuditActionServiceCreate, entity.AuditEntityService, "s1", map[string]string{"name": "Reiki"}))
	require.NoError(t, svc.LogDelete(context.Background(), db, nil, entity.AuditActionServiceDelete, entity.AuditEntityService, "s1", map[string]string{"name": "Reiki"}))

	require.Len(t, repo.created, 2)
	assert.NotContains(t, repo.created[0].Metadata, "old_value")
	assert.Contains(t, repo.created[0].Metadata, "new_value")
	assert.Contains(t, repo.created[1].Metadata, "old_value")
	assert.NotContains(t, repo.created[1].Metadata, "new_value")
}

func TestAuditService_RepositoryFailureIsReturned(t *testing.T) {
	dbErr := errors.New("insert failed")
	svc := NewAuditService(newTestLogger(), &captureAuditRepo{err: dbErr})

	err := svc.LogCreate(context.Background(), newAuditTestDB(t), nil, entity.AuditActionUserRegister, entity.AuditEntityUser, "u1", nil)
	assert.ErrorIs(t, err, dbErr)
}
