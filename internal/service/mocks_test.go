package service

import (
	"context"
	"time"

	"carhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// mockTx stands in for a database transaction. Only Commit and Rollback are
// implemented; the embedded interface panics on anything else.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *mockTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type mockVehicleRepo struct {
	mock.Mock
}

func (m *mockVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Vehicle, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]model.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepo) List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]model.Vehicle, int64, error) {
	args := m.Called(ctx, filter, page)
	var vehicles []model.Vehicle
	if v := args.Get(0); v != nil {
		vehicles = v.([]model.Vehicle)
	}
	return vehicles, args.Get(1).(int64), args.Error(2)
}

func (m *mockVehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockVehicleRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.VehicleStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockVehicleRepo) Reserve(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockVehicleRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.VehicleStatus) error {
	return m.Called(ctx, tx, id, status).Error(0)
}

func (m *mockVehicleRepo) SetQRCode(ctx context.Context, id uuid.UUID, payload string) (bool, error) {
	args := m.Called(ctx, id, payload)
	return args.Bool(0), args.Error(1)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockVehicleRepo) Stats(ctx context.Context) (*model.VehicleStats, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*model.VehicleStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, page model.Page) ([]model.User, int64, error) {
	args := m.Called(ctx, page)
	var users []model.User
	if v := args.Get(0); v != nil {
		users = v.([]model.User)
	}
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (bool, error) {
	args := m.Called(ctx, id, blocked)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockPromotionRepo struct {
	mock.Mock
}

func (m *mockPromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPromotionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Promotion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPromotionRepo) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	args := m.Called(ctx, code)
	if v := args.Get(0); v != nil {
		return v.(*model.Promotion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPromotionRepo) List(ctx context.Context, filter model.PromotionFilter, page model.Page) ([]model.Promotion, int64, error) {
	args := m.Called(ctx, filter, page)
	var promos []model.Promotion
	if v := args.Get(0); v != nil {
		promos = v.([]model.Promotion)
	}
	return promos, args.Get(1).(int64), args.Error(2)
}

func (m *mockPromotionRepo) ListEligible(ctx context.Context, vehicleID uuid.UUID, now time.Time) ([]model.Promotion, error) {
	args := m.Called(ctx, vehicleID, now)
	if v := args.Get(0); v != nil {
		return v.([]model.Promotion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPromotionRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockPromotionRepo) SetCode(ctx context.Context, id uuid.UUID, code string) error {
	return m.Called(ctx, id, code).Error(0)
}

func (m *mockPromotionRepo) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockPromotionRepo) IncrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockPromotionRepo) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPromotionRepo) DecrementUsageTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockPromotionRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockPromotionRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPromotionRepo) Analytics(ctx context.Context, now time.Time) (*model.PromotionAnalytics, error) {
	args := m.Called(ctx, now)
	if v := args.Get(0); v != nil {
		return v.(*model.PromotionAnalytics), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(pgx.Tx), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	return m.Called(ctx, tx, o).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, filter model.OrderFilter, page model.Page) ([]model.Order, int64, error) {
	args := m.Called(ctx, filter, page)
	var orders []model.Order
	if v := args.Get(0); v != nil {
		orders = v.([]model.Order)
	}
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) SaveStatus(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	return m.Called(ctx, tx, o).Error(0)
}

func (m *mockOrderRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, reference string) (bool, error) {
	args := m.Called(ctx, id, status, reference)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) Stats(ctx context.Context, now time.Time) (*model.OrderStats, error) {
	args := m.Called(ctx, now)
	if v := args.Get(0); v != nil {
		return v.(*model.OrderStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockComplaintRepo struct {
	mock.Mock
}

func (m *mockComplaintRepo) Create(ctx context.Context, c *model.Complaint) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockComplaintRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Complaint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockComplaintRepo) List(ctx context.Context, page model.Page) ([]model.Complaint, int64, error) {
	args := m.Called(ctx, page)
	var complaints []model.Complaint
	if v := args.Get(0); v != nil {
		complaints = v.([]model.Complaint)
	}
	return complaints, args.Get(1).(int64), args.Error(2)
}

func (m *mockComplaintRepo) Update(ctx context.Context, c *model.Complaint) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *mockComplaintRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockScanRepo struct {
	mock.Mock
}

func (m *mockScanRepo) Create(ctx context.Context, s *model.Scan) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockScanRepo) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, page model.Page) ([]model.Scan, int64, error) {
	args := m.Called(ctx, vehicleID, page)
	var scans []model.Scan
	if v := args.Get(0); v != nil {
		scans = v.([]model.Scan)
	}
	return scans, args.Get(1).(int64), args.Error(2)
}

func (m *mockScanRepo) Stats(ctx context.Context, vehicleID uuid.UUID, now time.Time) (*model.ScanStats, error) {
	args := m.Called(ctx, vehicleID, now)
	if v := args.Get(0); v != nil {
		return v.(*model.ScanStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeCache is an in-memory Cache for tests.
type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Key(resource, id string) string {
	return "test:" + resource + ":" + id
}
