package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/google/uuid"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// ホスト型チェックアウトのゲートウェイアダプタ。
// WebhookはHMAC-SHA256（hex）の署名付きで届く前提。
// 署名が正しいことだけを確認する。配達はat-least-once。
type Gateway struct {
	webhookSecret   []byte
	checkoutBaseURL string
}

func NewGateway(webhookSecret string, checkoutBaseURL string) *Gateway {
	return &Gateway{
		webhookSecret:   []byte(webhookSecret),
		checkoutBaseURL: checkoutBaseURL,
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, order model.Order, items []model.OrderItem) (usecase.PaymentSession, error) {
	if len(items) == 0 {
		return usecase.PaymentSession{}, errors.New("order has no items")
	}

	sessionID := uuid.NewString()
	url := fmt.Sprintf("%s/checkout/%s?order=%d&amount=%d",
		g.checkoutBaseURL, sessionID, order.ID, order.TotalPrice)

	return usecase.PaymentSession{URL: url, ID: sessionID}, nil
}

func (g *Gateway) VerifyEvent(payload []byte, signature string) (usecase.PaymentConfirmation, error) {
	mac := hmac.New(sha256.New, g.webhookSecret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	got, err := hex.DecodeString(signature)
	if err != nil {
		return usecase.PaymentConfirmation{}, ErrInvalidSignature
	}
	want, _ := hex.DecodeString(expected)
	if !hmac.Equal(got, want) {
		return usecase.PaymentConfirmation{}, ErrInvalidSignature
	}

	var ev usecase.PaymentConfirmation
	if err := json.Unmarshal(payload, &ev); err != nil {
		return usecase.PaymentConfirmation{}, fmt.Errorf("malformed payment event: %w", err)
	}
	return ev, nil
}
