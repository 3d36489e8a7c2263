package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/domain/entity"
	"service-marketplace/internal/service"
	"service-marketplace/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// setupMockDB returns a gorm handle whose only expected statements are the
// transaction boundaries; the repositories below never touch it.
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

func expectCommittedTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRolledBackTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func asUser(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

// fakeUserRepo

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	favorites map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     map[uuid.UUID]*entity.User{},
		favorites: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (r *fakeUserRepo) add(u *entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) get(id uuid.UUID) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *entity.User) error {
	if existing, _ := r.FindByEmail(nil, user.Email); existing != nil {
		return &pgconn.PgError{Code: "23505", ConstraintName: "uni_users_email"}
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.get(id), nil
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, id uuid.UUID, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ *gorm.DB, id uuid.UUID, roleID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].RoleID = roleID
	return nil
}

func (r *fakeUserRepo) AddFavoriteProvider(_ *gorm.DB, userID, providerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.favorites[userID] == nil {
		r.favorites[userID] = map[uuid.UUID]bool{}
	}
	r.favorites[userID][providerID] = true
	return nil
}

func (r *fakeUserRepo) RemoveFavoriteProvider(_ *gorm.DB, userID, providerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.favorites[userID][providerID] {
		return 0, nil
	}
	delete(r.favorites[userID], providerID)
	return 1, nil
}

func (r *fakeUserRepo) HasFavoriteProvider(_ *gorm.DB, userID, providerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.favorites[userID][providerID], nil
}

// fakeRoleRepo

type fakeRoleRepo struct{}

func (fakeRoleRepo) FindByName(_ *gorm.DB, name string) (*entity.Role, error) {
	switch name {
	case entity.RoleAdmin:
		return &entity.Role{ID: entity.RoleIDAdmin, RoleName: name}, nil
	case entity.RoleProvider:
		return &entity.Role{ID: entity.RoleIDProvider, RoleName: name}, nil
	case entity.RoleCustomer:
		return &entity.Role{ID: entity.RoleIDCustomer, RoleName: name}, nil
	}
	return nil, nil
}

// fakeProviderRepo

type fakeProviderRepo struct {
	mu        sync.Mutex
	providers map[uuid.UUID]*entity.Provider
	reviews   []entity.ProviderReview
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: map[uuid.UUID]*entity.Provider{}}
}

func (r *fakeProviderRepo) add(p *entity.Provider) *entity.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.providers[p.ID] = p
	return p
}

func (r *fakeProviderRepo) get(id uuid.UUID) *entity.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *fakeProviderRepo) Create(db *gorm.DB, provider *entity.Provider) error {
	r.add(provider)
	return nil
}

func (r *fakeProviderRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	return r.get(id), nil
}

func (r *fakeProviderRepo) FindDetailByID(_ *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	return r.get(id), nil
}

func (r *fakeProviderRepo) FindByUserID(_ *gorm.DB, userID uuid.UUID) (*entity.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProviderRepo) FindAll(_ *gorm.DB, filter entity.ProviderFilter) ([]entity.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Provider
	for _, p := range r.providers {
		if filter.AdultOnly != nil && p.IsAdultServiceProvider != *filter.AdultOnly {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessName < out[j].BusinessName })
	return out, nil
}

func (r *fakeProviderRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Provider, error) {
	return r.get(id), nil
}

func (r *fakeProviderRepo) Update(_ *gorm.DB, provider *entity.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *provider
	r.providers[provider.ID] = &cp
	return nil
}

func (r *fakeProviderRepo) IncrementCompletionStats(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return 0, nil
	}
	p.CompletedServices++
	p.TotalEarnings = p.TotalEarnings.Add(amount)
	return 1, nil
}

func (r *fakeProviderRepo) CreateReview(_ *gorm.DB, review *entity.ProviderReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = int64(len(r.reviews) + 1)
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeProviderRepo) HasReviewFrom(_ *gorm.DB, providerID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.ProviderID == providerID && rv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProviderRepo) UpdateRating(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, n int
	for _, rv := range r.reviews {
		if rv.ProviderID == id {
			sum += rv.Rating
			n++
		}
	}
	p := r.providers[id]
	p.ReviewCount = int64(n)
	if n > 0 {
		p.Rating = float64(sum) / float64(n)
	}
	return nil
}

// fakeServiceRepo

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[uuid.UUID]*entity.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[uuid.UUID]*entity.Service{}}
}

func (r *fakeServiceRepo) add(s *entity.Service) *entity.Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.services[s.ID] = s
	return s
}

func (r *fakeServiceRepo) Create(_ *gorm.DB, s *entity.Service) error {
	r.add(s)
	return nil
}

func (r *fakeServiceRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeServiceRepo) FindByProviderID(_ *gorm.DB, providerID uuid.UUID) ([]entity.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Service
	for _, s := range r.services {
		if s.ProviderID == providerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) FindAll(_ *gorm.DB, filter entity.ServiceFilter) ([]entity.Service, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Service
	for _, s := range r.services {
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeServiceRepo) Update(_ *gorm.DB, s *entity.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) Delete(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	return nil
}

// fakeBookingRepo hydrates Customer and Provider from the other fakes the way
// the real FindByID preloads them.

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*entity.Booking
	users     *fakeUserRepo
	providers *fakeProviderRepo

	// raceTo, when set, is applied right before the next UpdateStatus so the
	// conditional update misses.
	raceTo entity.BookingStatus
}

func newFakeBookingRepo(users *fakeUserRepo, providers *fakeProviderRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  map[uuid.UUID]*entity.Booking{},
		users:     users,
		providers: providers,
	}
}

func (r *fakeBookingRepo) add(b *entity.Booking) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.bookings[b.ID] = b
	return b
}

func (r *fakeBookingRepo) get(id uuid.UUID) *entity.Booking {
	r.mu.Lock()
	b, ok := r.bookings[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	cp := *b
	cp.Timeline = append([]entity.BookingTimelineEntry(nil), b.Timeline...)
	r.mu.Unlock()

	cp.Customer = r.users.get(cp.CustomerID)
	cp.Provider = r.providers.get(cp.ProviderID)
	return &cp
}

func (r *fakeBookingRepo) Create(_ *gorm.DB, b *entity.Booking) error {
	r.add(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	return r.get(id), nil
}

func (r *fakeBookingRepo) list(match func(*entity.Booking) bool) []entity.Booking {
	r.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.bookings))
	for id, b := range r.bookings {
		if match(b) {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	out := make([]entity.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.get(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r *fakeBookingRepo) FindByCustomerID(_ *gorm.DB, customerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error) {
	out := r.list(func(b *entity.Booking) bool {
		return b.CustomerID == customerID && (filter.Status == "" || b.Status == filter.Status)
	})
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByProviderID(_ *gorm.DB, providerID uuid.UUID, filter entity.BookingFilter) ([]entity.Booking, int64, error) {
	out := r.list(func(b *entity.Booking) bool {
		return b.ProviderID == providerID && (filter.Status == "" || b.Status == filter.Status)
	})
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindUrgentByProviderID(_ *gorm.DB, providerID uuid.UUID) ([]entity.Booking, error) {
	return r.list(func(b *entity.Booking) bool {
		return b.ProviderID == providerID && b.IsUrgent && b.Status == entity.BookingStatusPending
	}), nil
}

func (r *fakeBookingRepo) FindAll(_ *gorm.DB) ([]entity.Booking, error) {
	return r.list(func(*entity.Booking) bool { return true }), nil
}

func (r *fakeBookingRepo) UpdateStatus(_ *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return 0, nil
	}
	if r.raceTo != "" {
		b.Status = r.raceTo
		r.raceTo = ""
	}
	if b.Status != from {
		return 0, nil
	}
	b.Status = to
	return 1, nil
}

func (r *fakeBookingRepo) AppendTimeline(_ *gorm.DB, entry *entity.BookingTimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bookings[entry.BookingID]
	entry.ID = int64(len(b.Timeline) + 1)
	b.Timeline = append(b.Timeline, *entry)
	return nil
}

func (r *fakeBookingRepo) MarkCustomerNotified(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].Notifications.CustomerNotified = true
	return nil
}

func (r *fakeBookingRepo) MarkProviderNotified(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[id].Notifications.ProviderNotified = true
	return nil
}

func (r *fakeBookingRepo) Delete(_ *gorm.DB, id uuid.UUID, statuses []entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return 0, nil
	}
	for _, s := range statuses {
		if b.Status == s {
			delete(r.bookings, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeBookingRepo) CountByProviderAndStatus(_ *gorm.DB, providerID uuid.UUID, status entity.BookingStatus) (int64, error) {
	out := r.list(func(b *entity.Booking) bool { return b.ProviderID == providerID && b.Status == status })
	return int64(len(out)), nil
}

func (r *fakeBookingRepo) SumCompletedEarningsSince(_ *gorm.DB, providerID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, b := range r.list(func(b *entity.Booking) bool {
		return b.ProviderID == providerID && b.Status == entity.BookingStatusCompleted && !b.UpdatedAt.Before(since)
	}) {
		sum = sum.Add(b.TotalPrice)
	}
	return sum, nil
}

// fakeAudit records actions in call order.

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *fakeAudit) record(action string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *fakeAudit) LogCreate(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action, _, _ string, _ interface{}) error {
	return a.record(action)
}

func (a *fakeAudit) LogUpdate(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action, _, _ string, _, _ interface{}) error {
	return a.record(action)
}

func (a *fakeAudit) LogDelete(_ context.Context, _ *gorm.DB, _ *uuid.UUID, action, _, _ string, _ interface{}) error {
	return a.record(action)
}

func (a *fakeAudit) count(action string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, got := range a.actions {
		if got == action {
			n++
		}
	}
	return n
}

// fakeNotifier

type fakeNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	err  error
}

func (n *fakeNotifier) Dispatch(notification service.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) to(recipientType string) []service.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []service.Notification
	for _, s := range n.sent {
		if s.RecipientType == recipientType {
			out = append(out, s)
		}
	}
	return out
}

// fakeTokenStore

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]bool{}}
}

func storeKey(userID uuid.UUID, tokenType jwt.TokenType, tokenID string) string {
	return string(tokenType) + ":" + userID.String() + ":" + tokenID
}

func (s *fakeTokenStore) Save(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[storeKey(userID, tokenType, tokenID)] = true
	return nil
}

func (s *fakeTokenStore) Exists(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[storeKey(userID, tokenType, tokenID)], nil
}

func (s *fakeTokenStore) Delete(_ context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, storeKey(userID, tokenType, tokenID))
	return nil
}

func (s *fakeTokenStore) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := userID.String()
	for key := range s.tokens {
		if strings.Contains(key, suffix) {
			delete(s.tokens, key)
		}
	}
	return nil
}

func (s *fakeTokenStore) countFor(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.tokens {
		if strings.Contains(key, userID.String()) {
			n++
		}
	}
	return n
}
