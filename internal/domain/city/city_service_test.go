package city

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chargedrops/chargedrops-api/internal/types"
)

type MockCityRepo struct {
	mock.Mock
}

func (m *MockCityRepo) GetCityBySlug(ctx context.Context, slug string) (*types.City, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.City), args.Error(1)
}

func (m *MockCityRepo) GetAllCities(ctx context.Context) ([]types.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.City), args.Error(1)
}

func (m *MockCityRepo) SaveCity(ctx context.Context, city types.City) error {
	args := m.Called(ctx, city)
	return args.Error(0)
}

func newTestService(repo Repository) *ServiceImpl {
	return NewCityService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetCityBySlugTrimsInput(t *testing.T) {
	repo := new(MockCityRepo)
	svc := newTestService(repo)

	repo.On("GetCityBySlug", mock.Anything, "austin").
		Return(&types.City{Slug: "austin"}, nil)

	city, err := svc.GetCityBySlug(context.Background(), "  austin  ")
	require.NoError(t, err)
	assert.Equal(t, "austin", city.Slug)
}

func TestGetCityBySlugBlank(t *testing.T) {
	svc := newTestService(new(MockCityRepo))

	_, err := svc.GetCityBySlug(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestSaveCityNormalizesSlug(t *testing.T) {
	repo := new(MockCityRepo)
	svc := newTestService(repo)

	repo.On("SaveCity", mock.Anything, mock.MatchedBy(func(c types.City) bool {
		return c.Slug == "austin" && c.MapZoom == 13
	})).Return(nil)

	err := svc.SaveCity(context.Background(), types.City{Slug: "  Austin ", DisplayName: "Austin"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSaveCityRejectsUnsafeSlug(t *testing.T) {
	svc := newTestService(new(MockCityRepo))

	for _, slug := range []string{"two words", "a/b", ""} {
		err := svc.SaveCity(context.Background(), types.City{Slug: slug})
		assert.ErrorIs(t, err, types.ErrBadRequest, "slug %q", slug)
	}
}

func TestSaveCityKeepsExplicitZoom(t *testing.T) {
	repo := new(MockCityRepo)
	svc := newTestService(repo)

	repo.On("SaveCity", mock.Anything, mock.MatchedBy(func(c types.City) bool {
		return c.MapZoom == 15
	})).Return(nil)

	require.NoError(t, svc.SaveCity(context.Background(), types.City{Slug: "austin", MapZoom: 15}))
	repo.AssertExpectations(t)
}
