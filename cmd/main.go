package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addHolidayHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/add_holiday"
	cancelReservationHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/create_reservation"
	deleteBusinessHoursHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/delete_business_hours"
	deleteHolidayHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/delete_holiday"
	getAvailableSlotsHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/get_available_slots"
	getBusinessHoursHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/get_business_hours"
	getReservationHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/get_reservation"
	listCustomerReservationsHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/list_customer_reservations"
	listHolidaysHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/list_holidays"
	listSalonReservationsHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/list_salon_reservations"
	trashReservationHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/trash_reservation"
	upsertBusinessHoursHandler "github.com/atsuki-sakai/salon-system-sub000/internal/api/handlers/upsert_business_hours"
	"github.com/atsuki-sakai/salon-system-sub000/internal/api/middleware"
	"github.com/atsuki-sakai/salon-system-sub000/internal/config"
	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	reservationRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/reservation"
	scheduleRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/schedule"
	salonServiceClient "github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	reservationsService "github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations"
	scheduleService "github.com/atsuki-sakai/salon-system-sub000/internal/service/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/slots"
	createReservationUC "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/atsuki-sakai/salon-system-sub000/internal/usecase/get_available_slots"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/dbmetrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/keylock"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/metrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("SALON_CONFIG"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting salon reservation service...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены). nil-коллектор отключает запись
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Блокировка мастера на дату: Redis для нескольких инстансов, иначе внутри процесса
	var locker createReservationUC.Locker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		locker = keylock.NewRedisLocker(redisClient, cfg.Booking.LockTTL())
		log.Info("Using redis lock (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Booking.LockTTL())
	} else {
		locker = keylock.NewRegistry()
		log.Info("Using in-process lock registry")
	}

	// Инициализируем интеграционного клиента
	salonClient := salonServiceClient.NewClient(
		cfg.SalonService.URL,
		time.Duration(cfg.SalonService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (SalonService=%s timeout=%ds)",
		cfg.SalonService.URL, cfg.SalonService.Timeout)

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	policy := domain.BookingPolicy{
		SlotGranularityMinutes:  cfg.Booking.SlotGranularityMinutes,
		AdvanceBookingDays:      cfg.Booking.AdvanceBookingDays,
		MinBookingNoticeMinutes: cfg.Booking.MinBookingNoticeMinutes,
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(reservationRepository, txMgr, salonClient, log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, salonClient, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		salonClient,
		slots.NewGenerator(policy.SlotGranularityMinutes),
		policy,
		location,
		metricsCollector,
		log,
	)

	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		scheduleRepository,
		salonClient,
		locker,
		txMgr,
		policy,
		location,
		cfg.Booking.LockWait(),
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	trashReservation := trashReservationHandler.NewHandler(reservationSvc, log)
	listSalonReservations := listSalonReservationsHandler.NewHandler(reservationSvc, log)
	listCustomerReservations := listCustomerReservationsHandler.NewHandler(reservationSvc, log)
	getBusinessHours := getBusinessHoursHandler.NewHandler(scheduleSvc, log)
	upsertBusinessHours := upsertBusinessHoursHandler.NewHandler(scheduleSvc, log)
	deleteBusinessHours := deleteBusinessHoursHandler.NewHandler(scheduleSvc, log)
	listHolidays := listHolidaysHandler.NewHandler(scheduleSvc, log)
	addHoliday := addHolidayHandler.NewHandler(scheduleSvc, log)
	deleteHoliday := deleteHolidayHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты мастера на дату
	api.HandleFunc("/salons/{salonId}/staff/{staffId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание салона
	api.HandleFunc("/salons/{salonId}/business-hours", getBusinessHours.Handle).Methods(http.MethodGet)
	api.HandleFunc("/salons/{salonId}/holidays", listHolidays.HandleSalon).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/holidays", listHolidays.HandleStaff).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}", trashReservation.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{userId}/reservations", listCustomerReservations.Handle).Methods(http.MethodGet)

	// --- Управление салоном (для менеджеров) ---
	protected.HandleFunc("/salons/{salonId}/reservations", listSalonReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/business-hours", upsertBusinessHours.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/salons/{salonId}/business-hours", deleteBusinessHours.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/salons/{salonId}/holidays", addHoliday.HandleSalon).Methods(http.MethodPost)
	protected.HandleFunc("/salons/{salonId}/holidays/{date}", deleteHoliday.HandleSalon).Methods(http.MethodDelete)
	protected.HandleFunc("/staff/{staffId}/holidays", addHoliday.HandleStaff).Methods(http.MethodPost)
	protected.HandleFunc("/staff/{staffId}/holidays/{date}", deleteHoliday.HandleStaff).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
