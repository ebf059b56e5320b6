package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifyAmount(t *testing.T) {
	calc := &ServerCalculation{FinalTotal: 3132}

	testCases := []struct {
		name        string
		clientTotal int64
		valid       bool
	}{
		{"exact match", 3132, true},
		{"one yen under", 3131, true},
		{"one yen over", 3133, true},
		{"two yen under", 3130, false},
		{"two yen over", 3134, false},
		{"tampered", 1000, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := VerifyAmount(tc.clientTotal, calc)
			assert.Equal(t, tc.valid, v.Valid)
			assert.Equal(t, !tc.valid, v.Tampering)
			assert.Equal(t, tc.clientTotal-3132, v.Difference)
			assert.Equal(t, int64(3132), v.ServerTotal)
		})
	}
}

func TestCheckoutSession_IsExpired(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &CheckoutSession{CreatedAt: created, ExpiresAt: created.Add(DefaultSessionTTL)}

	assert.False(t, s.IsExpired(created.Add(DefaultSessionTTL)))
	assert.True(t, s.IsExpired(created.Add(DefaultSessionTTL+time.Millisecond)))
}

func TestSessionPatch_Apply(t *testing.T) {
	s := &CheckoutSession{
		Cart:              []LineItem{{ProductID: "a", Quantity: 1}},
		Verified:          true,
		ServerCalculation: &ServerCalculation{FinalTotal: 100},
	}

	t.Run("prefecture only keeps verification", func(t *testing.T) {
		pref := "東京都"
		SessionPatch{Prefecture: &pref}.Apply(s)
		assert.Equal(t, "東京都", s.Prefecture)
		assert.True(t, s.Verified)
		assert.NotNil(t, s.ServerCalculation)
	})

	t.Run("new cart resets verification", func(t *testing.T) {
		SessionPatch{Cart: []LineItem{{ProductID: "b", Quantity: 2}}}.Apply(s)
		assert.Equal(t, "b", s.Cart[0].ProductID)
		assert.False(t, s.Verified)
		assert.Nil(t, s.ServerCalculation)
	})
}
