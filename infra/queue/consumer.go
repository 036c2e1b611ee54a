package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/SundayYogurt/member_service/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Broker   string
	Topic    string
	GroupID  string
	Username string
	Password string
}

// read errors back off exponentially, doubling from readBackoffMin up to readBackoffMax
const (
	readBackoffMin = 100 * time.Millisecond
	readBackoffMax = 10 * time.Second
	readBackoffCap = 7 // 2^7 * 100ms passes readBackoffMax
)

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	Reader      MessageReader
	Handler     interfaces.ConsumerHandler
	ServiceName string
	log         *zap.Logger
}

func NewKafkaConsumer(cfg ConsumerConfig, serviceName string, handler interfaces.ConsumerHandler, log *zap.Logger) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.Username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 10e3, //10KB
		MaxBytes: 10e6, //10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:      reader,
		Handler:     handler,
		ServiceName: serviceName,
		log:         log.With(zap.String("service", serviceName), zap.String("topic", cfg.Topic)),
	}
}

// Listen reads until ctx is cancelled. Handler errors are logged and the
// message is still committed; there is no retry. Read errors, such as an
// unreachable broker, are retried with exponential backoff.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	defer kc.Reader.Close()

	consecutiveErrors := 0
	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			consecutiveErrors++
			backoff := readBackoff(consecutiveErrors)
			kc.log.Warn("read message",
				zap.Error(err),
				zap.Int("consecutive_errors", consecutiveErrors),
				zap.Duration("backoff", backoff),
			)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}
		consecutiveErrors = 0

		kc.log.Debug("received", zap.ByteString("key", msg.Key), zap.Int64("offset", msg.Offset))

		if err := kc.Handler.HandleMessage(ctx, msg.Key, msg.Value); err != nil {
			kc.log.Error("handle message", zap.ByteString("key", msg.Key), zap.Error(err))
		}
	}
}

func readBackoff(consecutiveErrors int) time.Duration {
	if consecutiveErrors <= 1 {
		return readBackoffMin
	}
	exponent := min(consecutiveErrors-1, readBackoffCap)
	return min(readBackoffMin<<exponent, readBackoffMax)
}
