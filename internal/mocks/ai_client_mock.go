package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"textgame-server/internal/ai"
)

// MockAIClient is a mock type for the ai.Client type
type MockAIClient struct {
	mock.Mock
}

// CallFunction provides a mock function with given fields: ctx, messages, fn
func (_m *MockAIClient) CallFunction(ctx context.Context, messages []ai.Message, fn ai.Function) ai.Result {
	ret := _m.Called(ctx, messages, fn)

	var r0 ai.Result
	if rf, ok := ret.Get(0).(func(context.Context, []ai.Message, ai.Function) ai.Result); ok {
		r0 = rf(ctx, messages, fn)
	} else {
		r0 = ret.Get(0).(ai.Result)
	}

	return r0
}

// ModelName provides a mock function with no fields
func (_m *MockAIClient) ModelName() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ ai.Client = (*MockAIClient)(nil)
