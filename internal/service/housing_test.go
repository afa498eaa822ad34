package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/hometag/housing-api/internal/lib/census"
	"github.com/hometag/housing-api/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCensusClient is a testify mock of CensusClient.
type MockCensusClient struct {
	mock.Mock
}

func (m *MockCensusClient) HousingStats(ctx context.Context, zipCode string) (*census.HousingStats, error) {
	args := m.Called(ctx, zipCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*census.HousingStats), args.Error(1)
}

func (m *MockCensusClient) EstablishmentCount(ctx context.Context, zipCode string) (int, error) {
	args := m.Called(ctx, zipCode)
	return args.Int(0), args.Error(1)
}

func newTestService(client CensusClient, concurrency int) *HousingService {
	logger := zerolog.Nop()
	return NewHousingService(client, &logger, concurrency)
}

func stats(total, owner int) *census.HousingStats {
	return &census.HousingStats{
		TotalUnits:                total,
		OwnerOccupiedUnits:        owner,
		RenterOccupiedUnits:       total - owner,
		SingleFamilyDetachedUnits: owner / 2,
		ApartmentsUnits:           1,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestFetchHousingAndBusiness_MergesRecords(t *testing.T) {
	client := new(MockCensusClient)
	client.On("HousingStats", mock.Anything, "94103").Return(stats(100, 37), nil)
	client.On("EstablishmentCount", mock.Anything, "94103").Return(2874, nil)

	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), []string{"94103"}, nil)

	require.Len(t, results, 1)
	assert.Equal(t, model.NewHousingResult("94103", model.HousingData{
		TotalUnits:                100,
		OwnerOccupiedUnits:        37,
		RenterOccupiedUnits:       63,
		SingleFamilyDetachedUnits: 18,
		ApartmentsUnits:           1,
		BusinessEstablishments:    model.Establishments(2874),
		PercentOwnerOccupied:      37.0,
	}), results[0])
	client.AssertExpectations(t)
}

func TestFetchHousingAndBusiness_EmptyInput(t *testing.T) {
	client := new(MockCensusClient)

	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), nil, nil)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	client.AssertNotCalled(t, "HousingStats", mock.Anything, mock.Anything)
}

func TestFetchHousingAndBusiness_ZeroTotalUnits(t *testing.T) {
	client := new(MockCensusClient)
	client.On("HousingStats", mock.Anything, "00001").Return(stats(0, 0), nil)
	client.On("EstablishmentCount", mock.Anything, "00001").Return(0, nil)

	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), []string{"00001"}, floatPtr(0))

	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].PercentOwnerOccupied)
}

func TestFetchHousingAndBusiness_BusinessLookupFailure(t *testing.T) {
	client := new(MockCensusClient)
	client.On("HousingStats", mock.Anything, "94103").Return(stats(10, 5), nil)
	client.On("EstablishmentCount", mock.Anything, "94103").
		Return(0, &census.UnavailableError{Dataset: census.DatasetCBP, Err: context.DeadlineExceeded})

	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), []string{"94103"}, nil)

	require.Len(t, results, 1)
	require.False(t, results[0].Failed())
	assert.False(t, results[0].BusinessEstablishments.Available)
	assert.Empty(t, results[0].Error)
}

func TestFetchHousingAndBusiness_HousingFailuresBecomeErrorEntries(t *testing.T) {
	client := new(MockCensusClient)
	client.On("HousingStats", mock.Anything, "11111").
		Return(nil, &census.RejectedError{Dataset: census.DatasetACS5, StatusCode: 500, Body: "upstream broke"})
	client.On("HousingStats", mock.Anything, "22222").Return(nil, census.ErrNoData)
	client.On("HousingStats", mock.Anything, "33333").
		Return(nil, &census.MalformedResponseError{Dataset: census.DatasetACS5, Err: errors.New("bad json")})
	client.On("HousingStats", mock.Anything, "44444").Return(stats(4, 3), nil)
	client.On("EstablishmentCount", mock.Anything, "44444").Return(7, nil)

	zips := []string{"11111", "22222", "33333", "44444"}
	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), zips, nil)

	require.Len(t, results, 4)
	assert.Equal(t, model.NewErrorResult("11111", "API Error 500: upstream broke"), results[0])
	assert.Equal(t, model.NewErrorResult("22222", "no data found"), results[1])
	assert.True(t, results[2].Failed())
	assert.Contains(t, results[2].Error, "bad json")
	assert.False(t, results[3].Failed())
	assert.Equal(t, 75.0, results[3].PercentOwnerOccupied)

	// No establishment lookup for codes whose housing lookup failed.
	client.AssertNotCalled(t, "EstablishmentCount", mock.Anything, "11111")
	client.AssertNotCalled(t, "EstablishmentCount", mock.Anything, "22222")
}

func TestFetchHousingAndBusiness_OwnerOccupiedFilter(t *testing.T) {
	client := new(MockCensusClient)
	// 4999/10000 = 49.99%
	client.On("HousingStats", mock.Anything, "10001").Return(stats(10000, 4999), nil)
	client.On("HousingStats", mock.Anything, "10002").Return(stats(100, 50), nil)
	client.On("HousingStats", mock.Anything, "10003").
		Return(nil, &census.RejectedError{Dataset: census.DatasetACS5, StatusCode: 400, Body: "bad"})
	client.On("EstablishmentCount", mock.Anything, mock.Anything).Return(1, nil)

	zips := []string{"10001", "10002", "10003"}
	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), zips, floatPtr(50))

	require.Len(t, results, 2)
	assert.Equal(t, "10002", results[0].ZipCode)
	assert.Equal(t, 50.0, results[0].PercentOwnerOccupied)
	// Error entries are not subject to the filter.
	assert.Equal(t, "10003", results[1].ZipCode)
	assert.True(t, results[1].Failed())
}

func TestFetchHousingAndBusiness_FilterUsesRoundedPercent(t *testing.T) {
	client := new(MockCensusClient)
	// 1/32 = 3.125%, which rounds to 3.12.
	client.On("HousingStats", mock.Anything, "10001").Return(stats(32, 1), nil)
	client.On("EstablishmentCount", mock.Anything, "10001").Return(1, nil)

	svc := newTestService(client, 1)

	results := svc.FetchHousingAndBusiness(context.Background(), []string{"10001"}, floatPtr(3.13))
	assert.Empty(t, results)

	results = svc.FetchHousingAndBusiness(context.Background(), []string{"10001"}, floatPtr(3.12))
	require.Len(t, results, 1)
	assert.Equal(t, 3.12, results[0].PercentOwnerOccupied)
}

func TestFetchHousingAndBusiness_RecoversPanics(t *testing.T) {
	client := new(MockCensusClient)
	// A nil stats with a nil error is a client bug; it must not take the
	// remaining codes down with it.
	client.On("HousingStats", mock.Anything, "99999").Return((*census.HousingStats)(nil), nil)
	client.On("HousingStats", mock.Anything, "94103").Return(stats(2, 1), nil)
	client.On("EstablishmentCount", mock.Anything, "94103").Return(3, nil)

	results := newTestService(client, 1).FetchHousingAndBusiness(context.Background(), []string{"99999", "94103"}, nil)

	require.Len(t, results, 2)
	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Error, "internal error")
	assert.False(t, results[1].Failed())
}

func TestFetchHousingAndBusiness_SequentialOrder(t *testing.T) {
	client := new(MockCensusClient)
	zips := []string{"30001", "30002", "30003"}

	var calls []string
	for _, zip := range zips {
		zip := zip
		client.On("HousingStats", mock.Anything, zip).
			Run(func(args mock.Arguments) { calls = append(calls, "housing:"+zip) }).
			Return(stats(10, 1), nil)
		client.On("EstablishmentCount", mock.Anything, zip).
			Run(func(args mock.Arguments) { calls = append(calls, "business:"+zip) }).
			Return(1, nil)
	}

	newTestService(client, 1).FetchHousingAndBusiness(context.Background(), zips, nil)

	assert.Equal(t, []string{
		"housing:30001", "business:30001",
		"housing:30002", "business:30002",
		"housing:30003", "business:30003",
	}, calls)
}

func TestFetchHousingAndBusiness_ConcurrentPreservesOrder(t *testing.T) {
	client := new(MockCensusClient)

	zips := make([]string, 40)
	for i := range zips {
		zip := strconv.Itoa(50000 + i)
		zips[i] = zip
		if i%3 == 0 {
			client.On("HousingStats", mock.Anything, zip).Return(nil, census.ErrNoData)
			continue
		}
		client.On("HousingStats", mock.Anything, zip).Return(stats(100, i), nil)
		client.On("EstablishmentCount", mock.Anything, zip).Return(i, nil)
	}

	results := newTestService(client, 8).FetchHousingAndBusiness(context.Background(), zips, nil)

	require.Len(t, results, len(zips))
	for i, r := range results {
		assert.Equal(t, zips[i], r.ZipCode)
		assert.Equal(t, i%3 == 0, r.Failed(), "zip %s", r.ZipCode)
	}
}

func TestNewHousingService_ClampsConcurrency(t *testing.T) {
	assert.Equal(t, 1, newTestService(new(MockCensusClient), 0).concurrency)
	assert.Equal(t, 4, newTestService(new(MockCensusClient), 4).concurrency)
}
