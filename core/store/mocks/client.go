package mocks

import (
	"context"

	"refdesk/core/store"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of store.Client
type Client struct {
	mock.Mock
}

func (m *Client) Select(ctx context.Context, table string, f store.Filter) ([]store.Row, error) {
	args := m.Called(ctx, table, f)
	if rows, ok := args.Get(0).([]store.Row); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Insert(ctx context.Context, table string, rows []store.Row) error {
	args := m.Called(ctx, table, rows)
	return args.Error(0)
}

func (m *Client) Upsert(ctx context.Context, table string, rows []store.Row, conflictCols []string) error {
	args := m.Called(ctx, table, rows, conflictCols)
	return args.Error(0)
}

func (m *Client) Update(ctx context.Context, table string, patch store.Row, f store.Filter) error {
	args := m.Called(ctx, table, patch, f)
	return args.Error(0)
}

func (m *Client) Delete(ctx context.Context, table string, f store.Filter) error {
	args := m.Called(ctx, table, f)
	return args.Error(0)
}
