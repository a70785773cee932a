package mocks

import (
	context "context"

	models "github.com/UnknownOlympus/themis/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// TableRepoIface is a mock type for the TableRepoIface type
type TableRepoIface struct {
	mock.Mock
}

// ListTables provides a mock function with given fields: ctx
func (_m *TableRepoIface) ListTables(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListTables")
	}

	var r0 []string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]string, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []string); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]string)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadTable provides a mock function with given fields: ctx, table
func (_m *TableRepoIface) ReadTable(ctx context.Context, table string) (models.Table, error) {
	ret := _m.Called(ctx, table)

	if len(ret) == 0 {
		panic("no return value specified for ReadTable")
	}

	var r0 models.Table
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (models.Table, error)); ok {
		return rf(ctx, table)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) models.Table); ok {
		r0 = rf(ctx, table)
	} else {
		r0 = ret.Get(0).(models.Table)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, table)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewTableRepoIface creates a new instance of TableRepoIface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewTableRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
}) *TableRepoIface {
	mock := &TableRepoIface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
