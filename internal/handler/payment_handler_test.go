package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/infra/payment"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type settlerStub struct {
	err  error
	seen []usecase.PaymentConfirmation
}

func (s *settlerStub) Settle(ctx context.Context, ev usecase.PaymentConfirmation) error {
	s.seen = append(s.seen, ev)
	return s.err
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, settler Settler, payload []byte, sig string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	gateway := payment.NewGateway("whsec", "https://pay.example.com")
	h := NewPaymentHandler(nil, settler, gateway)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewReader(payload))
	if sig != "" {
		req.Header.Set("X-Payment-Signature", sig)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.webhook(c))

	var env Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestWebhook_SuccessfulSettlement(t *testing.T) {
	settler := &settlerStub{}
	payload := []byte(`{"user_id":1,"order_id":10,"payment_ref":"pay_abc"}`)

	rec, env := postWebhook(t, settler, payload, signPayload("whsec", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
	assert.Len(t, settler.seen, 1)
	assert.Equal(t, int64(10), settler.seen[0].OrderID)
}

func TestWebhook_BadSignatureRejectedBeforeSettlement(t *testing.T) {
	settler := &settlerStub{}
	payload := []byte(`{"user_id":1,"order_id":10}`)

	rec, env := postWebhook(t, settler, payload, signPayload("wrong", payload))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "fail", env.Status)
	assert.Empty(t, settler.seen)
}

// 業務上の失敗は200のfailで応える。ゲートウェイに再送させない。
func TestWebhook_BusinessFailureReturns200Fail(t *testing.T) {
	settler := &settlerStub{err: usecase.NewInsufficientStockError("product 100", 0)}
	payload := []byte(`{"user_id":1,"order_id":10,"payment_ref":"pay_abc"}`)

	rec, env := postWebhook(t, settler, payload, signPayload("whsec", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fail", env.Status)
}

// 一時障害は5xxで再送を促す
func TestWebhook_TransientFailureReturns500(t *testing.T) {
	settler := &settlerStub{err: usecase.NewInternalError(errors.New("db down"))}
	payload := []byte(`{"user_id":1,"order_id":10,"payment_ref":"pay_abc"}`)

	rec, env := postWebhook(t, settler, payload, signPayload("whsec", payload))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", env.Status)
}
