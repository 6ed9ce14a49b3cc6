package boot

import (
	"context"
	"log"

	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/db"
	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/lib/notify"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the background jobs and starts the scheduler.
func InitScheduler(d *notify.Dispatcher) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := d.ScheduleRetries(config.NotifyRetryInterval()); err != nil {
		log.Printf("Error scheduling notification retries: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// ResolveWebhookSecret returns the Stripe signing secret, reading it from
// Secrets Manager when it is not set in the environment. An empty result
// leaves the webhook answering 500 until the secret is configured.
func ResolveWebhookSecret(ctx context.Context) string {
	return resolveWebhookSecret(ctx, lib.AWSGetSecretString)
}

func resolveWebhookSecret(ctx context.Context, fetch func(context.Context, string) (string, error)) string {
	if secret := config.StripeWebhookSecret(); secret != "" {
		return secret
	}
	secretID := config.StripeWebhookSecretID()
	if secretID == "" {
		log.Println("[StripeEvent] STRIPE_WEBHOOK_SECRET is not set")
		return ""
	}
	secret, err := fetch(ctx, secretID)
	if err != nil {
		log.Printf("[StripeEvent] Could not load webhook secret %s: %s\n", secretID, err.Error())
		return ""
	}
	return secret
}
