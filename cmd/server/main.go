package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/config"
	"github.com/runclubno/runclub-backend/internal/database"
	"github.com/runclubno/runclub-backend/internal/handler"
	appmw "github.com/runclubno/runclub-backend/internal/middleware"
	"github.com/runclubno/runclub-backend/internal/notify"
	"github.com/runclubno/runclub-backend/internal/payments"
	"github.com/runclubno/runclub-backend/internal/queue"
	"github.com/runclubno/runclub-backend/internal/repository"
	"github.com/runclubno/runclub-backend/internal/router"
	"github.com/runclubno/runclub-backend/internal/strava"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Nil Redis client degrades gracefully: rate limiting and the
	// response cache become no-ops.
	rdb := config.NewRedisClient()

	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	attendees := repository.NewAttendeeRepo(db)
	paymentsRepo := repository.NewPaymentRepo(db)
	coupons := repository.NewCouponRepo(db)
	pushSubs := repository.NewPushRepo(db)
	stravaRepo := repository.NewStravaRepo(db)

	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey, "")
	stravaClient := strava.NewClient(cfg.StravaClientID, cfg.StravaClientSecret, "")

	e := echo.New()
	e.HideBanner = true
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, members, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewEventHandler(events, registrations, attendees),
		handler.NewWebhookHandler(cfg, events, registrations, attendees, members, paymentsRepo),
		cacheMW)
	router.RegisterMember(e,
		handler.NewRegistrationHandler(cfg, events, registrations, attendees, members, coupons, stripeClient),
		handler.NewStravaHandler(stravaRepo, stravaClient),
		handler.NewPushHandler(pushSubs),
		cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminEventHandler(events),
		handler.NewAdminAttendeeHandler(cfg, events, attendees, registrations, stripeClient),
		handler.NewAdminMemberHandler(members),
		handler.NewAdminPaymentHandler(paymentsRepo, registrations, events),
		handler.NewAdminCouponHandler(coupons),
		handler.NewAdminReconcileHandler(events, registrations, attendees),
		cfg.JWTSecret)

	// The notification consumer runs for the life of the process and
	// reconnects on broker failures. A missing broker only disables
	// notifications.
	consumer := &queue.Consumer{
		Push:  notify.NewPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber),
		Email: notify.NewEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom),
		Subs:  pushSubs,
	}
	go func() {
		if err := consumer.Start(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
