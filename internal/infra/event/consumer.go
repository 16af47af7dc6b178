package event

import (
	"context"
	"encoding/json"
	"errors"

	"app/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Settlerは決済確定イベントを処理する約束。
// 実装はusecase.SettlementUsecase。
type Settler interface {
	Settle(ctx context.Context, ev usecase.PaymentConfirmation) error
}

// PaymentConsumerはkafkaから決済確定イベントを読み続ける。
// Webhookと同じ確定処理を通すので二重配信されても安全。
type PaymentConsumer struct {
	reader  *kafka.Reader
	settler Settler
	logger  zerolog.Logger
}

func NewPaymentConsumer(brokers []string, topic string, groupID string, settler Settler, logger zerolog.Logger) *PaymentConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &PaymentConsumer{reader: r, settler: settler, logger: logger}
}

// Runはctxが終わるまでブロックする。goroutineで呼ぶこと。
func (c *PaymentConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.Error().Err(err).Msg("kafka read failed")
			continue
		}

		var ev usecase.PaymentConfirmation
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			// 壊れたメッセージは捨てる（再読しても直らない）
			c.logger.Warn().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("malformed payment event")
			continue
		}

		if err := c.settler.Settle(ctx, ev); err != nil {
			c.logger.Error().Err(err).Int64("order_id", ev.OrderID).Msg("settlement from event failed")
			continue
		}

		c.logger.Info().Int64("order_id", ev.OrderID).Msg("settled from event")
	}
}

func (c *PaymentConsumer) Close() error {
	return c.reader.Close()
}
