package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// MockDataProvider is a mock implementation of contract.DataProvider for testing.
type MockDataProvider struct {
	mock.Mock
}

// Ensure MockDataProvider implements contract.DataProvider
var _ contract.DataProvider = &MockDataProvider{}

// FetchMetrics mocks the FetchMetrics method.
func (m *MockDataProvider) FetchMetrics(ctx context.Context) (*schema.MetricsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.MetricsResponse), args.Error(1)
}

// FetchJourney mocks the FetchJourney method.
func (m *MockDataProvider) FetchJourney(ctx context.Context) (*schema.JourneyResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.JourneyResponse), args.Error(1)
}

// FetchImpact mocks the FetchImpact method.
func (m *MockDataProvider) FetchImpact(ctx context.Context) (*schema.ImpactResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.ImpactResponse), args.Error(1)
}

// FetchLearners mocks the FetchLearners method.
func (m *MockDataProvider) FetchLearners(ctx context.Context, query schema.LearnerQuery) (*schema.LearnerPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.LearnerPage), args.Error(1)
}

// FetchSegmentCounts mocks the FetchSegmentCounts method.
func (m *MockDataProvider) FetchSegmentCounts(ctx context.Context) (*schema.SegmentCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.SegmentCounts), args.Error(1)
}
