package usecase

import (
	"context"

	"github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockNotificationUseCase is a mock type for the NotificationUseCase type
type MockNotificationUseCase struct {
	mock.Mock
}

// NewMockNotificationUseCase creates a new instance and registers its expectation check
func NewMockNotificationUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotificationUseCase {
	m := &MockNotificationUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func notificationResult(args mock.Arguments) (*entity.NotificationResult, error) {
	var result *entity.NotificationResult
	if v := args.Get(0); v != nil {
		result = v.(*entity.NotificationResult)
	}
	return result, args.Error(1)
}

func (m *MockNotificationUseCase) Send(ctx context.Context, email *entity.Email) (*entity.NotificationResult, error) {
	return notificationResult(m.Called(ctx, email))
}

func (m *MockNotificationUseCase) SendOrderConfirmation(ctx context.Context, notice entity.OrderConfirmation) (*entity.NotificationResult, error) {
	return notificationResult(m.Called(ctx, notice))
}

func (m *MockNotificationUseCase) SendPaymentFailure(ctx context.Context, notice entity.PaymentFailureNotice) (*entity.NotificationResult, error) {
	return notificationResult(m.Called(ctx, notice))
}

func (m *MockNotificationUseCase) SendShippingNotification(ctx context.Context, notice entity.ShipmentNotice) (*entity.NotificationResult, error) {
	return notificationResult(m.Called(ctx, notice))
}

func (m *MockNotificationUseCase) SendRollbackAlert(ctx context.Context, alert entity.RollbackAlert) (*entity.NotificationResult, error) {
	return notificationResult(m.Called(ctx, alert))
}
