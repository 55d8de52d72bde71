package db

import (
	"log"
	"time"

	"github.com/brightpaws/dogtrainer-api/internal/config"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Dog{},
		&models.DaycareSchedule{},
		&models.Session{},
		&models.SessionSignup{},
		&models.SessionWaitlist{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// A dog holds at most one active signup per session. Closed rows
	// (cancelled/rejected) stay behind as history and do not block a fresh
	// signup, so the constraint is partial.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_signups_active_session_dog
        ON session_signups (session_id, dog_id)
        WHERE status IN ('pending', 'approved')
    `)

	// The relay listens for new outbox rows instead of polling tightly.
	db.Exec(`
        CREATE OR REPLACE FUNCTION notify_outbox() RETURNS trigger AS $$
        BEGIN
            PERFORM pg_notify('outbox_channel', NEW.event_id);
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql
    `)
	db.Exec(`DROP TRIGGER IF EXISTS notifications_outbox_notify ON notifications`)
	db.Exec(`
        CREATE TRIGGER notifications_outbox_notify
        AFTER INSERT ON notifications
        FOR EACH ROW EXECUTE FUNCTION notify_outbox()
    `)

	return db
}
