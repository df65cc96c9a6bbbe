package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/mq"
)

// amqpSource — непрерывный поток сообщений из очереди RabbitMQ.
// Каждое сообщение — один пакет.
type amqpSource struct {
	site   Site
	conn   *mq.Connection
	logger *slog.Logger
}

func (s *amqpSource) Site() Site { return s.site }

func (s *amqpSource) Fetch(ctx context.Context, out chan<- domain.Packet) error {
	return fmt.Errorf("site %s: %w", s.site.Name, ErrNotFetchable)
}

func (s *amqpSource) Stream(ctx context.Context, out chan<- domain.Packet) error {
	consumer := mq.NewConsumer(s.conn, s.logger, mq.ConsumerConfig{
		Queue: s.site.Queue,
		Handler: func(ctx context.Context, body []byte) error {
			pkt := domain.Packet{
				Source:  s.site.Name,
				Format:  s.site.Format,
				Payload: append([]byte(nil), body...),
				TS:      time.Now(),
			}
			select {
			case out <- pkt:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	err := consumer.Start(ctx)
	if ctx.Err() != nil {
		// Штатная остановка потока.
		return ctx.Err()
	}
	return err
}
