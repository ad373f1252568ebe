package mocks

import (
	"context"

	"parenting-server/pkg/ai"

	"github.com/stretchr/testify/mock"
)

// Client - мок ai.Client.
type Client struct {
	mock.Mock
}

func (m *Client) Complete(ctx context.Context, req ai.Request) (string, ai.Usage, error) {
	args := m.Called(ctx, req)
	usage, _ := args.Get(1).(ai.Usage)
	return args.String(0), usage, args.Error(2)
}
