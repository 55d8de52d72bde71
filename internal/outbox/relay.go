// Package outbox drains the notifications table and hands rows to the
// message broker. The API process only ever inserts outbox rows; this relay
// owns marking them processed, so a state change is never blocked by broker
// availability.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/brightpaws/dogtrainer-api/internal/messaging"
	"github.com/brightpaws/dogtrainer-api/internal/notify"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	maxEventsPerBatch = 100
)

// Relay listens for pg_notify signals from the notifications insert trigger
// and publishes outbox rows to the broker.
type Relay struct {
	db        *sql.DB
	dbURL     string
	publisher messaging.Publisher
	listener  *pq.Listener
	dbCB      *gobreaker.CircuitBreaker
}

func NewRelay(db *sql.DB, dbURL string, publisher messaging.Publisher) *Relay {
	return &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      messaging.NewCircuitBreaker("Relay-PostgreSQL"),
	}
}

// Start blocks until ctx is cancelled, draining the outbox on notifications
// and on a periodic safety-net tick.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("outbox relay: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	log.Printf("outbox relay: listening on %q", outboxChannelName)

	// Catch up on anything inserted while the relay was down.
	if err := r.processUnprocessed(ctx); err != nil {
		log.Printf("outbox relay: startup backlog: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				// nil means the listener reconnected; the periodic pass
				// picks up anything missed in between.
				continue
			}

			if err := r.processEvent(ctx, notification.Extra); err != nil {
				log.Printf("outbox relay: event %s: %v", notification.Extra, err)
			}

		case <-time.After(periodicProcessInterval):
			go r.listener.Ping()

			if err := r.processUnprocessed(ctx); err != nil {
				log.Printf("outbox relay: periodic pass: %v", err)
			}
		}
	}
}

// processEvent publishes a single outbox row identified by its event UUID.
func (r *Relay) processEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var msg notify.Message
		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT event_id, event_type, recipient_id, payload
			FROM notifications
			WHERE event_id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).
			Scan(&msg.EventID, &msg.EventType, &msg.RecipientID, &payload)

		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		msg.Payload = json.RawMessage(payload)

		if err := r.publisher.Publish(ctx, msg); err != nil {
			return nil, err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE notifications SET processed_at = NOW() WHERE event_id = $1`, msg.EventID); err != nil {
			return nil, err
		}

		return nil, tx.Commit()
	})
	return err
}

// processUnprocessed drains a batch of pending rows in insertion order.
func (r *Relay) processUnprocessed(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT event_id, event_type, recipient_id, payload
			FROM notifications
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var msgs []notify.Message
		for rows.Next() {
			var msg notify.Message
			var payload []byte
			if err := rows.Scan(&msg.EventID, &msg.EventType, &msg.RecipientID, &payload); err != nil {
				return nil, err
			}
			msg.Payload = json.RawMessage(payload)
			msgs = append(msgs, msg)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, msg := range msgs {
			if err := r.publisher.Publish(ctx, msg); err != nil {
				log.Printf("outbox relay: publish %s: %v", msg.EventID, err)
				continue
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE notifications SET processed_at = NOW() WHERE event_id = $1`, msg.EventID); err != nil {
				return nil, err
			}
		}

		return nil, tx.Commit()
	})
	return err
}
