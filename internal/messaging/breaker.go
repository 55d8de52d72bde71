package messaging

import (
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates a breaker with the settings shared by the relay
// and the publisher. Database-facing breakers get a shorter recovery timeout
// than broker-facing ones.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	timeout := 30 * time.Second
	if name == "Relay-PostgreSQL" {
		timeout = 10 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
