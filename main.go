package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"melatoninAPI/handlers"
	"melatoninAPI/internal/notification"
	"melatoninAPI/middleware"
	"melatoninAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	userService         *services.UserService
	streakService       *services.StreakService
	notificationService *services.NotificationService
	gamificationService *services.GamificationService
	dreamService        *services.DreamService
	ritualService       *services.RitualService
	circleService       *services.CircleService
	progressService     *services.ProgressService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	notificationService = services.NewNotificationService(dbPool)
	gamificationService = services.NewGamificationService(dbPool, notificationService)
	streakService = services.NewStreakService(dbPool)
	userService = services.NewUserService(dbPool)
	dreamService = services.NewDreamService(dbPool, streakService, gamificationService)
	ritualService = services.NewRitualService(dbPool, streakService, gamificationService)
	circleService = services.NewCircleService(dbPool, gamificationService)
	progressService = services.NewProgressService(dbPool, streakService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	dreamHandler := handlers.NewDreamHandler(dreamService)
	ritualHandler := handlers.NewRitualHandler(ritualService)
	progressHandler := handlers.NewProgressHandler(progressService)
	circleHandler := handlers.NewCircleHandler(circleService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	notificationService.StartReminderWorker(workerCtx)
	go expireQuestRuns(workerCtx)

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "melatonin-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/users", userHandler.GetOrCreateUser).Methods("POST")

	// -------------------------------------------------------------------------
	// IDENTIFIED ROUTES (REQUIRE X-User-ID HEADER)
	// -------------------------------------------------------------------------
	identified := api.PathPrefix("").Subrouter()
	identified.Use(middleware.IdentityMiddleware)

	identified.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	identified.HandleFunc("/user/preferences", userHandler.GetPreferences).Methods("GET")
	identified.HandleFunc("/user/preferences", userHandler.UpdatePreferences).Methods("PUT")

	identified.HandleFunc("/dreams", dreamHandler.CreateDream).Methods("POST")
	identified.HandleFunc("/dreams", dreamHandler.GetDreams).Methods("GET")
	identified.HandleFunc("/dreams/{id}/comments", dreamHandler.AddComment).Methods("POST")
	identified.HandleFunc("/dreams/{id}/comments", dreamHandler.GetComments).Methods("GET")

	identified.HandleFunc("/rituals", ritualHandler.CreateRitual).Methods("POST")
	identified.HandleFunc("/rituals", ritualHandler.GetRituals).Methods("GET")
	identified.HandleFunc("/rituals/{id}/entries", ritualHandler.LogEntry).Methods("POST")

	identified.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	identified.HandleFunc("/progress/achievements", progressHandler.GetAchievements).Methods("GET")
	identified.HandleFunc("/progress/stats", progressHandler.GetUserStats).Methods("GET")

	identified.HandleFunc("/export/dreams", dreamHandler.ExportDreams).Methods("GET")
	identified.HandleFunc("/export/rituals", ritualHandler.ExportRituals).Methods("GET")
	identified.HandleFunc("/export/achievements", progressHandler.ExportAchievements).Methods("GET")

	identified.HandleFunc("/circles", circleHandler.CreateCircle).Methods("POST")
	identified.HandleFunc("/circles", circleHandler.GetUserCircles).Methods("GET")
	identified.HandleFunc("/circles/join-by-invite", circleHandler.JoinByInvite).Methods("POST")
	identified.HandleFunc("/circles/{id}/join", circleHandler.JoinCircle).Methods("POST")
	identified.HandleFunc("/circles/{id}/dreams", circleHandler.ShareDream).Methods("POST")
	identified.HandleFunc("/circles/{id}/dreams", circleHandler.GetCircleDreams).Methods("GET")
	identified.HandleFunc("/circles/{id}/members", circleHandler.GetMembers).Methods("GET")
	identified.HandleFunc("/circles/{id}/posts", circleHandler.CreatePost).Methods("POST")
	identified.HandleFunc("/circles/{id}/posts", circleHandler.GetPosts).Methods("GET")
	identified.HandleFunc("/circles/posts/{postId}/comments", circleHandler.AddPostComment).Methods("POST")
	identified.HandleFunc("/circles/{id}/invites", circleHandler.CreateInvite).Methods("POST")
	identified.HandleFunc("/circles/{id}/invites", circleHandler.GetInvites).Methods("GET")

	identified.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	identified.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	identified.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")

	identified.HandleFunc("/reminders", notificationHandler.ScheduleReminder).Methods("POST")
	identified.HandleFunc("/reminders", notificationHandler.GetActiveReminders).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-User-ID", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// expireQuestRuns sweeps past-deadline quest runs once an hour.
func expireQuestRuns(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			n, err := gamificationService.ExpireStaleRuns(sweepCtx)
			cancel()
			if err != nil {
				log.Printf("Quest expiry sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("Expired %d stale quest runs", n)
			}
		}
	}
}
