package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/monitoring"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Logger     watermill.LoggerAdapter
	Subscriber message.Subscriber
	Mailer     Mailer
	// Broker is optional; without it lifecycle events stay in process.
	Broker BrokerPublisher
}

// NewRouter wires the handlers consuming ticket lifecycle events. Handler
// failures are logged and the message is acked: nothing is retried.
func NewRouter(deps RouterDeps) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	router.AddMiddleware(correlationIDMiddleware)
	router.AddMiddleware(loggerMiddleware)
	router.AddMiddleware(ackFailuresMiddleware)

	router.AddNoPublisherHandler(
		"send-confirmation-email",
		TopicTicketIssued,
		deps.Subscriber,
		handleSendConfirmation(deps.Mailer),
	)

	if deps.Broker != nil {
		for _, topic := range lifecycleTopics {
			router.AddNoPublisherHandler(
				"forward-"+topic,
				topic,
				deps.Subscriber,
				handleForward(deps.Broker, topic),
			)
		}
	}

	return router, nil
}

func handleSendConfirmation(mailer Mailer) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var issued TicketIssued
		if err := json.Unmarshal(msg.Payload, &issued); err != nil {
			return fmt.Errorf("decoding %s: %w", TopicTicketIssued, err)
		}

		err := mailer.SendConfirmation(msg.Context(), confirmationFrom(issued))
		monitoring.ConfirmationEmail(err)
		return err
	}
}

func handleForward(broker BrokerPublisher, topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		return broker.Publish(msg.Context(), topic, msg.Payload, middleware.MessageCorrelationID(msg))
	}
}

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID)
		msg.SetContext(ctx)

		return next(msg)
	}
}

func loggerMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := logging.ToContext(msg.Context(), logrus.WithFields(logrus.Fields{
			"message_uuid":   msg.UUID,
			"correlation_id": logging.CorrelationIDFromContext(msg.Context()),
		}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

func ackFailuresMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		if err != nil {
			logging.FromContext(msg.Context()).WithError(err).WithField("handler", message.HandlerNameFromCtx(msg.Context())).Error("Message handling failed")
			return nil, nil
		}
		return msgs, nil
	}
}
