package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "ride_requests_total", Help: "Total ride requests created"})

	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "ride_transitions_total", Help: "Accepted ride status transitions"},
		[]string{"status"},
	)

	ClaimConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "claim_conflicts_total", Help: "Claim attempts lost to another driver"})

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "events_published_total", Help: "Ride events published to live channels"},
		[]string{"event"},
	)

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "rideshare", Name: "ws_connected_clients", Help: "Currently connected websocket clients"})
)
