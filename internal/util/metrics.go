package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_placed_total",
		Help: "Total number of purchase orders placed",
	})

	PurchasesFulfilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_fulfilled_total",
		Help: "Total number of purchases granted to a library",
	})

	PurchasesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_rejected_total",
		Help: "Total number of purchases rejected by payment",
	})

	PurchasesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_failed_total",
		Help: "Total number of purchase attempts failing validation",
	}, []string{"reason"})

	CartItemsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_skipped_total",
		Help: "Total number of cart items skipped during cart purchase",
	})

	PaymentDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_decisions_total",
		Help: "Total number of payment verdicts produced",
	}, []string{"status"})

	BusPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_publishes_total",
		Help: "Total number of messages published to the bus",
	}, []string{"routing_key"})

	BusDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_deliveries_total",
		Help: "Total number of bus deliveries by outcome",
	}, []string{"routing_key", "outcome"})

	PurchaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "purchase_latency_seconds",
		Help:    "Latency of purchase registration",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
