package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Webhookの確定処理の約束。実装はusecase.SettlementUsecase。
type Settler interface {
	Settle(ctx context.Context, ev usecase.PaymentConfirmation) error
}

// 決済セッション作成とWebhook受信のHTTP
type PaymentHandler struct {
	paymentUC *usecase.PaymentUsecase
	settler   Settler
	gateway   usecase.PaymentGateway
}

// DI
func NewPaymentHandler(
	paymentUC *usecase.PaymentUsecase,
	settler Settler,
	gateway usecase.PaymentGateway,
) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
		settler:   settler,
		gateway:   gateway,
	}
}

type CheckoutSessionRequest struct {
	OrderID int64 `json:"order_id"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payment")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("/checkout-session", h.createCheckoutSession)

	// Webhookは認証なし。HMAC署名で正当性を確認する。
	e.POST("/webhook/payment", h.webhook)
}

func (h *PaymentHandler) createCheckoutSession(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeFail(c, http.StatusUnauthorized, failMessage("unauthorized"))
	}

	var req CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("invalid body"))
	}

	sess, err := h.paymentUC.CreateCheckoutSession(c.Request().Context(), userID, req.OrderID)
	if err != nil {
		return writeError(c, err)
	}

	return writeSuccess(c, http.StatusOK, sess)
}

// 決済確定Webhook。
// 業務上の失敗（在庫不足・状態不正など）はトランザクションを
// 巻き戻した上で200のfailで応える。ゲートウェイに再送させても
// 結果は変わらないため。一時障害だけ5xxで再送を促す。
func (h *PaymentHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeFail(c, http.StatusBadRequest, failMessage("cannot read body"))
	}

	sig := c.Request().Header.Get("X-Payment-Signature")
	ev, err := h.gateway.VerifyEvent(payload, sig)
	if err != nil {
		log.Warn().Err(err).Msg("webhook signature rejected")
		return writeFail(c, http.StatusUnauthorized, failMessage("invalid signature"))
	}

	if err := h.settler.Settle(c.Request().Context(), ev); err != nil {
		if ue, ok := usecase.AsError(err); ok && ue.Kind != usecase.KindInternal {
			data := failMessage(ue.Message)
			data["order_id"] = strconv.FormatInt(ev.OrderID, 10)
			return writeFail(c, http.StatusOK, data)
		}
		log.Error().Err(err).Int64("order_id", ev.OrderID).Msg("settlement failed")
		return c.JSON(http.StatusInternalServerError, Envelope{Status: "error", Message: "internal error"})
	}

	return writeSuccess(c, http.StatusOK, map[string]interface{}{"received": true})
}
