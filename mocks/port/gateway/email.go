package gateway

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock type for the EmailSender type
type MockEmailSender struct {
	mock.Mock
}

// NewMockEmailSender creates a new instance and registers its expectation check
func NewMockEmailSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEmailSender {
	m := &MockEmailSender{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEmailSender) Send(ctx context.Context, email *entity.Email) (*entity.SendReceipt, error) {
	args := m.Called(ctx, email)
	var receipt *entity.SendReceipt
	if v := args.Get(0); v != nil {
		receipt = v.(*entity.SendReceipt)
	}
	return receipt, args.Error(1)
}
