package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkful_registrations_total",
		Help: "Number of successful user registrations.",
	})
	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkful_logins_total",
		Help: "Number of successful logins.",
	})
	likesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkful_likes_total",
		Help: "Number of committed like transactions.",
	})
	unlikesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forkful_unlikes_total",
		Help: "Number of committed unlike transactions.",
	})
)
