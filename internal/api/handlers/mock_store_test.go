package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
)

// MockStore implements Store, advisory.Store and auth.UserStore for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListCrops(ctx context.Context) ([]datastore.Crop, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.Crop](args, 0), args.Error(1)
}

func (m *MockStore) GetCrop(ctx context.Context, id uint) (*datastore.Crop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.Crop), args.Error(1)
}

func (m *MockStore) ListDiseases(ctx context.Context) ([]datastore.Disease, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.Disease](args, 0), args.Error(1)
}

func (m *MockStore) ListDiseasesByCrop(ctx context.Context, cropID uint) ([]datastore.Disease, error) {
	args := m.Called(ctx, cropID)
	return sliceArg[datastore.Disease](args, 0), args.Error(1)
}

func (m *MockStore) GetDiseaseWithCrop(ctx context.Context, id uint) (*datastore.DiseaseWithCrop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.DiseaseWithCrop), args.Error(1)
}

func (m *MockStore) ListSolutionsByDisease(ctx context.Context, diseaseID uint) ([]datastore.Solution, error) {
	args := m.Called(ctx, diseaseID)
	return sliceArg[datastore.Solution](args, 0), args.Error(1)
}

func (m *MockStore) ListFertilizers(ctx context.Context) ([]datastore.Fertilizer, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.Fertilizer](args, 0), args.Error(1)
}

func (m *MockStore) ListFertilizersByCrop(ctx context.Context, cropID uint) ([]datastore.Fertilizer, error) {
	args := m.Called(ctx, cropID)
	return sliceArg[datastore.Fertilizer](args, 0), args.Error(1)
}

func (m *MockStore) ListAdvisoryByCrop(ctx context.Context, cropID uint) ([]datastore.Advisory, error) {
	args := m.Called(ctx, cropID)
	return sliceArg[datastore.Advisory](args, 0), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]datastore.User, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.User](args, 0), args.Error(1)
}

func (m *MockStore) CountCrops(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CountDiseases(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CropDiseaseCounts(ctx context.Context) ([]datastore.CropDiseaseCount, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.CropDiseaseCount](args, 0), args.Error(1)
}

func (m *MockStore) ListAlerts(ctx context.Context) ([]datastore.Alert, error) {
	args := m.Called(ctx)
	return sliceArg[datastore.Alert](args, 0), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*datastore.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datastore.User), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, user *datastore.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func sliceArg[T any](args mock.Arguments, i int) []T {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]T)
}
