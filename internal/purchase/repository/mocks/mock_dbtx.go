package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	callArgs := make([]interface{}, 0, 3+len(args))
	callArgs = append(callArgs, ctx, dest, query)
	callArgs = append(callArgs, args...)
	return m.Called(callArgs...).Error(0)
}

func (m *MockDBTX) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	callArgs := make([]interface{}, 0, 3+len(args))
	callArgs = append(callArgs, ctx, dest, query)
	callArgs = append(callArgs, args...)
	return m.Called(callArgs...).Error(0)
}

func (m *MockDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	callArgs := make([]interface{}, 0, 2+len(args))
	callArgs = append(callArgs, ctx, query)
	callArgs = append(callArgs, args...)

	ret := m.Called(callArgs...)

	var r0 sql.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(sql.Result)
	}
	return r0, ret.Error(1)
}

func (m *MockDBTX) Rebind(query string) string {
	return query
}

func (m *MockDBTX) DriverName() string {
	return "mock"
}

func (m *MockDBTX) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBTX) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
