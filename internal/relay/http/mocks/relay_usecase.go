// Package mocks provides mock implementations for testing relay HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// MockRelayUseCase is a mock implementation of RelayUseCase for testing.
type MockRelayUseCase struct {
	mock.Mock
}

// VerifyEndpoint mocks the VerifyEndpoint method of RelayUseCase.
func (m *MockRelayUseCase) VerifyEndpoint(
	ctx context.Context,
	params wechatDomain.SignatureParams,
	echostr string,
) (string, error) {
	args := m.Called(ctx, params, echostr)
	return args.String(0), args.Error(1)
}

// HandleInbound mocks the HandleInbound method of RelayUseCase.
func (m *MockRelayUseCase) HandleInbound(
	ctx context.Context,
	params wechatDomain.SignatureParams,
	body []byte,
) error {
	args := m.Called(ctx, params, body)
	return args.Error(0)
}

// HandlePost mocks the HandlePost method of RelayUseCase.
func (m *MockRelayUseCase) HandlePost(
	ctx context.Context,
	input *relayDomain.PostInput,
) (*relayDomain.PostOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*relayDomain.PostOutput), args.Error(1)
}
