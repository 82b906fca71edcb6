package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"textgame-server/internal/model"
	"textgame-server/internal/repository"
)

// MockWritingStyleRepository is a mock type for the repository.WritingStyleRepository type
type MockWritingStyleRepository struct {
	mock.Mock
}

func (_m *MockWritingStyleRepository) Create(ctx context.Context, style *model.WritingStyle) error {
	ret := _m.Called(ctx, style)
	return ret.Error(0)
}

func (_m *MockWritingStyleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WritingStyle, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.WritingStyle
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *model.WritingStyle); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.WritingStyle)
	}

	return r0, ret.Error(1)
}

func (_m *MockWritingStyleRepository) List(ctx context.Context) ([]*model.WritingStyle, error) {
	ret := _m.Called(ctx)

	var r0 []*model.WritingStyle
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*model.WritingStyle)
	}

	return r0, ret.Error(1)
}

func (_m *MockWritingStyleRepository) Update(ctx context.Context, style *model.WritingStyle) error {
	ret := _m.Called(ctx, style)
	return ret.Error(0)
}

func (_m *MockWritingStyleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockWritingStyleRepository) IncrementUseCount(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// NewMockWritingStyleRepository creates a new instance of MockWritingStyleRepository.
// The first argument is typically a *testing.T value.
func NewMockWritingStyleRepository(t interface {
	mock.TestingT
	Helper()
}) *MockWritingStyleRepository {
	m := &MockWritingStyleRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.WritingStyleRepository = (*MockWritingStyleRepository)(nil)
