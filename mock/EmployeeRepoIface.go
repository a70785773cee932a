package mocks

import (
	context "context"

	models "github.com/UnknownOlympus/themis/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// EmployeeRepoIface is a mock type for the EmployeeRepoIface type
type EmployeeRepoIface struct {
	mock.Mock
}

// GetAllEmployees provides a mock function with given fields: ctx
func (_m *EmployeeRepoIface) GetAllEmployees(ctx context.Context) ([]models.Employee, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for GetAllEmployees")
	}

	var r0 []models.Employee
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]models.Employee, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []models.Employee); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.Employee)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetNewEmployees provides a mock function with given fields: ctx
func (_m *EmployeeRepoIface) GetNewEmployees(ctx context.Context) ([]models.NewEmployee, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for GetNewEmployees")
	}

	var r0 []models.NewEmployee
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]models.NewEmployee, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []models.NewEmployee); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.NewEmployee)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewEmployeeRepoIface creates a new instance of EmployeeRepoIface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewEmployeeRepoIface(t interface {
	mock.TestingT
	Cleanup(func())
}) *EmployeeRepoIface {
	mock := &EmployeeRepoIface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
