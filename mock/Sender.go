package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

// Sender is a mock type for the Sender type
type Sender struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, to, from, body
func (_m *Sender) Send(ctx context.Context, to string, from string, body string) (string, error) {
	ret := _m.Called(ctx, to, from, body)

	if len(ret) == 0 {
		panic("no return value specified for Send")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) (string, error)); ok {
		return rf(ctx, to, from, body)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) string); ok {
		r0 = rf(ctx, to, from, body)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, to, from, body)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewSender creates a new instance of Sender. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *Sender {
	mock := &Sender{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
