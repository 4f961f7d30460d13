package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/telemetry-gateway/internal/logging"
	"github.com/i474232898/telemetry-gateway/internal/metrics"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

// ServiceName is reported by /health and used as the Fiber app name.
const ServiceName = "telemetry-gateway"

// StatusReader exposes recorded provider probe results.
type StatusReader interface {
	LatestStatus(provider string) (telemetry.ProviderStatus, error)
	History(provider string) []telemetry.ProviderStatus
}

// Options configures NewApp.
type Options struct {
	Service *telemetry.Service

	// Statuses is optional; without it /health reports the provider as unknown.
	Statuses StatusReader

	Logger *slog.Logger

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the gateway's Fiber app with middleware, health, metrics and telemetry routes.
func NewApp(opts Options) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          ErrorHandler,
	})

	// Global middleware. instrument sits outside recover so panics are counted.
	app.Use(instrument)
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(requestContext(log))
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
			Output: opts.AccessLog,
		}))
	}

	app.Get("/health", healthHandler(opts.Service, opts.Statuses))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	RegisterRoutes(app, opts.Service)

	return app
}

// ErrorHandler renders every failure as an ErrorEnvelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var gwErr *telemetry.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &gwErr):
		code = gwErr.Status
		message = gwErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		logging.FromContext(c.UserContext()).Error("unhandled error", "error", err)
	}

	return c.Status(code).JSON(telemetry.NewErrorEnvelope(code, message))
}

// requestContext carries the request id and a request-scoped logger into the
// handler context so the service and provider see them.
func requestContext(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.GetRespHeader(fiber.HeaderXRequestID)

		ctx := telemetry.WithRequestID(c.UserContext(), rid)
		ctx = logging.WithLogger(ctx, logging.WithRequestID(log, rid))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// instrument records request count and latency. Errors are rendered here so
// the recorded status is the one sent to the client.
func instrument(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	route := c.Route().Path
	metrics.HTTPRequests.WithLabelValues(route, c.Method(), strconv.Itoa(c.Response().StatusCode())).Inc()
	metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	return nil
}

type providerHealth struct {
	Name      string                    `json:"name"`
	State     string                    `json:"state"`
	LastProbe *telemetry.ProviderStatus `json:"last_probe,omitempty"`
}

func healthHandler(service *telemetry.Service, statuses StatusReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := service.ProviderName()
		provider := providerHealth{Name: name, State: "unknown"}

		if statuses != nil {
			if st, err := statuses.LatestStatus(name); err == nil {
				provider.LastProbe = &st
				provider.State = "unreachable"
				if st.Reachable {
					provider.State = "reachable"
				}
			}
		}

		resp := fiber.Map{
			"status":   "ok",
			"service":  ServiceName,
			"provider": provider,
		}
		if statuses != nil && c.QueryBool("history") {
			resp["history"] = statuses.History(name)
		}
		return c.JSON(resp)
	}
}
