// Package bootstrap assembles the order façade for the binaries that drive it.
package bootstrap

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/surplusmarket-backend/internal/notifications"
	"github.com/angelmondragon/surplusmarket-backend/internal/offers"
	"github.com/angelmondragon/surplusmarket-backend/internal/orders"
	"github.com/angelmondragon/surplusmarket-backend/internal/reservation"
	"github.com/angelmondragon/surplusmarket-backend/pkg/config"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db"
	"github.com/angelmondragon/surplusmarket-backend/pkg/idempotency"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pubsub"
	"github.com/angelmondragon/surplusmarket-backend/pkg/redis"
)

// OrderService wires the reservation engine, outbox and notification fan-out behind the
// order façade. pubsubClient may be nil when no GCP project is configured.
func OrderService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, pubsubClient *pubsub.Client, orderMetrics *metrics.OrderMetrics) (orders.Service, error) {
	engine, err := reservation.NewEngine(offers.NewRepository(dbClient.DB()), orderMetrics)
	if err != nil {
		return nil, err
	}

	guard, err := idempotency.NewManager(redisClient, cfg.Notification.DedupTTL)
	if err != nil {
		return nil, err
	}
	inApp, err := notifications.NewInAppSender(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	senders := []notifications.Sender{inApp}
	if pubsubClient != nil {
		if publisher := pubsub.WrapPublisher(pubsubClient.NotificationPublisher()); publisher != nil {
			fanout, err := notifications.NewPubSubSender(publisher)
			if err != nil {
				return nil, err
			}
			senders = append(senders, fanout)
		}
	}
	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Senders: senders,
		Guard:   guard,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(cfg.Orders.DefaultDeliveryFee)
	if err != nil {
		return nil, err
	}

	return orders.NewService(orders.ServiceParams{
		Repo:               orders.NewRepository(dbClient.DB()),
		Tx:                 dbClient,
		Engine:             engine,
		Outbox:             outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Notifier:           dispatcher,
		Metrics:            orderMetrics,
		Logger:             logg,
		DefaultDeliveryFee: fee,
	})
}
