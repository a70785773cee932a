package mocks

import (
	context "context"

	models "github.com/UnknownOlympus/themis/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// FeedbackRepoIface is a mock type for the FeedbackRepoIface type
type FeedbackRepoIface struct {
	mock.Mock
}

// GetAllFeedback provides a mock function with given fields: ctx
func (_m *FeedbackRepoIface) GetAllFeedback(ctx context.Context) ([]models.Feedback, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for GetAllFeedback")
	}

	var r0 []models.Feedback
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]models.Feedback, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []models.Feedback); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.Feedback)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewFeedbackRepoIface creates a new instance of FeedbackRepoIface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewFeedbackRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
}) *FeedbackRepoIface {
	mock := &FeedbackRepoIface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
