package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/payalert-labs/payalert/internal/config"
	"github.com/payalert-labs/payalert/internal/model"
	"github.com/payalert-labs/payalert/internal/reminder"
	"github.com/payalert-labs/payalert/internal/service"
	"github.com/payalert-labs/payalert/internal/storage"
	"github.com/sirupsen/logrus"
)

// Server wires HTTP handlers.
type Server struct {
	app         *fiber.App
	paymentSvc  *service.PaymentService
	subSvc      *service.SubscriptionService
	dispatchSvc *service.DispatchService
	logSvc      *service.NotificationLogService
	authSvc     *service.AuthService
	store       storage.Store
	cfg         *config.Config
	log         *logrus.Logger
}

// New builds a server instance.
func New(cfg *config.Config, store storage.Store, paymentSvc *service.PaymentService, subSvc *service.SubscriptionService, dispatchSvc *service.DispatchService, logSvc *service.NotificationLogService, authSvc *service.AuthService, log *logrus.Logger) *Server {
	app := fiber.New(fiber.Config{
		IdleTimeout:  cfg.HTTP.ReadTimeout,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		AppName:      "payalert",
	})
	s := &Server{
		app:         app,
		paymentSvc:  paymentSvc,
		subSvc:      subSvc,
		dispatchSvc: dispatchSvc,
		logSvc:      logSvc,
		authSvc:     authSvc,
		store:       store,
		cfg:         cfg,
		log:         log,
	}
	s.registerRoutes()
	return s
}

// Start listens and serves HTTP traffic.
func (s *Server) Start() error {
	return s.app.Listen(s.cfg.HTTP.Addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	s.app.Get("/api/payments", s.handleListPayments)
	s.app.Post("/api/payments", s.handleCreatePayment)
	s.app.Put("/api/payments", s.handleUpdatePayment)
	s.app.Delete("/api/payments", s.handleDeletePayment)

	s.app.Post("/api/push/subscribe", s.handleSubscribe)
	s.app.Get("/api/push/key", s.handleVAPIDKey)
	s.app.Post("/api/push/test", s.handleTestPush)

	s.app.Get("/api/cron/send-reminders", s.handleSendReminders)
	s.app.Post("/api/cron/send-reminders", s.handleSendReminders)

	s.app.Post("/auth/login", s.handleLogin)
	s.app.Get("/auth/profile", s.handleProfile)

	logGroup := s.app.Group("/api/notification/log", s.requireAuth)
	logGroup.Get("/list", s.handleLogList)
	logGroup.Get("/count/date", s.handleLogCountDate)
	logGroup.Get("/count/kind", s.handleLogCountKind)
	logGroup.Get("/count/device", s.handleLogCountDevice)

	admin := s.app.Group("/admin", s.requireAuth)
	admin.Get("/summary", s.handleAdminSummary)

	s.serveFrontend()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"push":   s.cfg.PushConfigured(),
	})
}

func (s *Server) handleListPayments(c *fiber.Ctx) error {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		return s.fail(c, http.StatusBadRequest, "device_id is required")
	}
	payments, err := s.paymentSvc.List(c.Context(), deviceID)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(payments)
}

func (s *Server) handleCreatePayment(c *fiber.Ctx) error {
	var req service.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid request body")
	}
	payment, err := s.paymentSvc.Create(c.Context(), req)
	if err != nil {
		return s.fail(c, http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(payment)
}

func (s *Server) handleUpdatePayment(c *fiber.Ctx) error {
	var req service.UpdatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid request body")
	}
	payment, err := s.paymentSvc.Update(c.Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.fail(c, http.StatusNotFound, "payment not found")
		}
		return s.fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(payment)
}

func (s *Server) handleDeletePayment(c *fiber.Ctx) error {
	err := s.paymentSvc.Delete(c.Context(), c.Query("device_id"), c.Query("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.fail(c, http.StatusNotFound, "payment not found")
		}
		return s.fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleSubscribe(c *fiber.Ctx) error {
	var req service.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid request body")
	}
	sub, err := s.subSvc.Upsert(c.Context(), req)
	if err != nil {
		return s.fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "device_id": sub.DeviceID})
}

func (s *Server) handleVAPIDKey(c *fiber.Ctx) error {
	if !s.cfg.PushConfigured() {
		return s.fail(c, http.StatusInternalServerError, "VAPID keys not configured")
	}
	return c.JSON(fiber.Map{"key": s.cfg.Push.VAPIDPublicKey})
}

func (s *Server) handleTestPush(c *fiber.Ctx) error {
	if !s.authSvc.CronSecretConfigured() {
		return s.fail(c, http.StatusInternalServerError, "cron secret not configured")
	}
	if !s.authSvc.VerifyCronSecret(s.requestSecret(c)) {
		return s.fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if !s.cfg.PushConfigured() {
		return s.fail(c, http.StatusInternalServerError, "VAPID keys not configured")
	}
	deviceID := c.Query("device_id")
	if deviceID == "" {
		var body struct {
			DeviceID string `json:"device_id"`
		}
		if err := c.BodyParser(&body); err == nil {
			deviceID = body.DeviceID
		}
	}
	if deviceID == "" {
		return s.fail(c, http.StatusBadRequest, "device_id is required")
	}
	if err := s.dispatchSvc.SendTest(c.Context(), deviceID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.fail(c, http.StatusNotFound, "no push subscription found for this device")
		}
		return s.fail(c, http.StatusInternalServerError, "push failed: "+err.Error())
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Test notification sent!",
		"device_id": deviceID,
	})
}

func (s *Server) handleSendReminders(c *fiber.Ctx) error {
	if !s.authSvc.CronSecretConfigured() {
		return s.fail(c, http.StatusInternalServerError, "cron secret not configured")
	}
	if !s.authSvc.VerifyCronSecret(s.requestSecret(c)) {
		return s.fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if !s.cfg.PushConfigured() {
		return s.fail(c, http.StatusInternalServerError, "VAPID keys not configured")
	}
	mode, err := reminder.ParseMode(c.Query("mode"))
	if err != nil {
		return s.fail(c, http.StatusBadRequest, err.Error())
	}

	timeout := s.cfg.Reminder.SweepTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := s.dispatchSvc.RunSweep(ctx, mode, time.Now())
	if err != nil {
		s.log.WithError(err).WithField("mode", string(mode)).Error("sweep failed")
		return s.fail(c, http.StatusInternalServerError, "sweep failed")
	}
	return c.JSON(model.SweepResponse{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Mode:      string(mode),
		Results:   result,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, "invalid request body")
	}
	if s.authSvc == nil || !s.authSvc.Enabled() {
		return c.JSON(fiber.Map{
			"token":    "",
			"enabled":  false,
			"username": "guest",
		})
	}
	token, err := s.authSvc.Authenticate(req.Username, req.Password)
	if err != nil {
		return s.fail(c, http.StatusUnauthorized, err.Error())
	}
	return c.JSON(fiber.Map{
		"token":    token,
		"enabled":  true,
		"username": s.authSvc.Username(),
	})
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	if s.authSvc == nil || !s.authSvc.Enabled() {
		return c.JSON(fiber.Map{
			"enabled":  false,
			"username": "guest",
		})
	}
	token := extractBearerToken(c.Get("Authorization"))
	if token == "" {
		return s.fail(c, http.StatusUnauthorized, "not logged in")
	}
	claims, err := s.authSvc.Validate(token)
	if err != nil {
		return s.fail(c, http.StatusUnauthorized, "session expired")
	}
	return c.JSON(fiber.Map{
		"enabled":  true,
		"username": claims.Username,
	})
}

func (s *Server) handleLogList(c *fiber.Ctx) error {
	filter := parseLogFilter(c)
	page, err := s.logSvc.Query(c.Context(), filter)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(page)
}

func (s *Server) handleLogCountDate(c *fiber.Ctx) error {
	begin, end := parseTimeRange(c)
	dateType := c.Query("dateType", "day")
	data, err := s.logSvc.CountByDate(c.Context(), dateType, begin, end)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(data)
}

func (s *Server) handleLogCountKind(c *fiber.Ctx) error {
	begin, end := parseTimeRange(c)
	data, err := s.logSvc.CountByKind(c.Context(), begin, end)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(data)
}

func (s *Server) handleLogCountDevice(c *fiber.Ctx) error {
	begin, end := parseTimeRange(c)
	data, err := s.logSvc.CountByDevice(c.Context(), begin, end)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(data)
}

func (s *Server) handleAdminSummary(c *fiber.Ctx) error {
	ctx := c.Context()
	entries, err := s.store.ListNotificationLogs(ctx)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, err.Error())
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)
	todaySent := 0
	for _, entry := range entries {
		if entry.CreatedAt.Before(todayStart) {
			break
		}
		todaySent++
	}
	recent := make([]fiber.Map, 0, 5)
	for i := 0; i < len(entries) && i < 5; i++ {
		recent = append(recent, fiber.Map{
			"kind":      entries[i].Kind,
			"paymentId": entries[i].PaymentID,
			"deviceId":  maskValue(entries[i].DeviceID),
			"time":      entries[i].CreatedAt.Local().Format("01-02 15:04"),
		})
	}
	return c.JSON(fiber.Map{
		"pushConfigured": s.cfg.PushConfigured(),
		"totalSent":      len(entries),
		"todaySent":      todaySent,
		"recentLogs":     recent,
	})
}

func (s *Server) fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(model.Error(message))
}

func (s *Server) serveFrontend() {
	dir := strings.TrimSpace(s.cfg.Frontend.Dir)
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	s.app.Static("/", dir, fiber.Static{
		Index:    "index.html",
		Compress: true,
	})
}

// requestSecret pulls the trigger secret from the Authorization header or
// the secret query parameter; hosted cron services differ on which they
// can send.
func (s *Server) requestSecret(c *fiber.Ctx) string {
	if secret := c.Query("secret"); secret != "" {
		return secret
	}
	return extractBearerToken(c.Get("Authorization"))
}

func (s *Server) requireAuth(c *fiber.Ctx) error {
	if s.authSvc == nil || !s.authSvc.Enabled() {
		return c.Next()
	}
	token := extractBearerToken(c.Get("Authorization"))
	if token == "" {
		return s.fail(c, http.StatusUnauthorized, "not logged in")
	}
	claims, err := s.authSvc.Validate(token)
	if err != nil {
		return s.fail(c, http.StatusUnauthorized, "session expired")
	}
	c.Locals("username", claims.Username)
	return c.Next()
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseLogFilter(c *fiber.Ctx) model.NotificationLogFilter {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "10"))
	begin, end := parseTimeRange(c)
	return model.NotificationLogFilter{
		DeviceID:  c.Query("deviceId"),
		Kind:      c.Query("kind"),
		BeginTime: begin,
		EndTime:   end,
		Page:      page,
		PageSize:  pageSize,
	}
}

func parseTimeRange(c *fiber.Ctx) (*time.Time, *time.Time) {
	begin := parseTime(c.Query("beginTime"))
	end := parseTime(c.Query("endTime"))
	return begin, end
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

func maskValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return value
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-4)
}
