package dto

import "github.com/amirhossein-jamali/farm-storefront/internal/domain/entity"

// CreateSessionRequest represents the API request for starting checkout
type CreateSessionRequest struct {
	OwnerID    string     `json:"ownerId" binding:"required"`
	Cart       []LineItem `json:"cart" binding:"required,min=1,dive"`
	Prefecture string     `json:"prefecture"`
}

// CalculateRequest asks for a server-side total without opening a session
type CalculateRequest struct {
	Cart       []LineItem `json:"cart" binding:"required,min=1,dive"`
	Prefecture string     `json:"prefecture"`
}

// UpdateSessionRequest changes the cart or the destination of a session
type UpdateSessionRequest struct {
	Cart       []LineItem `json:"cart" binding:"omitempty,dive"`
	Prefecture *string    `json:"prefecture"`
}

// ToPatch converts the request to a session patch
func (r UpdateSessionRequest) ToPatch() entity.SessionPatch {
	patch := entity.SessionPatch{Prefecture: r.Prefecture}
	if len(r.Cart) > 0 {
		patch.Cart = ToEntities(r.Cart)
	}
	return patch
}

// VerifyRequest carries the total the browser displayed
type VerifyRequest struct {
	ClientTotal int64 `json:"clientTotal" binding:"required,min=1"`
}

// VerifyResponse is the outcome of an amount check. Server figures are only disclosed on a match.
type VerifyResponse struct {
	Valid       bool                      `json:"valid"`
	Message     string                    `json:"message,omitempty"`
	Calculation *entity.ServerCalculation `json:"calculation,omitempty"`
}
