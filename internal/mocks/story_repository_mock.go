package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"textgame-server/internal/model"
	"textgame-server/internal/repository"
)

// MockStoryRepository is a mock type for the repository.StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

func (_m *MockStoryRepository) Create(ctx context.Context, story *model.Story) error {
	ret := _m.Called(ctx, story)
	return ret.Error(0)
}

func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *model.Story); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Story)
	}

	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) List(ctx context.Context, publicOnly bool) ([]*model.Story, error) {
	ret := _m.Called(ctx, publicOnly)

	var r0 []*model.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*model.Story)
	}

	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockStoryRepository) AppendChapter(ctx context.Context, story *model.Story, chapter *model.StoryChapter) error {
	ret := _m.Called(ctx, story, chapter)
	return ret.Error(0)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository.
// The first argument is typically a *testing.T value.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)
