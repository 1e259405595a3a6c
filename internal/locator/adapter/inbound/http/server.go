package http_handler

import (
	"context"
	"errors"
	"fmt"

	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthanhphan/go-token-locator/internal/locator/domain"
	"github.com/anthanhphan/go-token-locator/internal/locator/port"
	"github.com/anthanhphan/go-token-locator/pkg/locator"
)

type Server struct {
	app     *fiber.App
	addr    string
	service port.PlacementService
}

type endpointsResponse struct {
	Keyspace  string             `json:"keyspace"`
	Token     string             `json:"token"`
	Endpoints []locator.Endpoint `json:"endpoints"`
}

// NewServer builds the HTTP API. gatherer may be nil to disable /metrics.
func NewServer(addr string, service port.PlacementService, gatherer prometheus.Gatherer) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		addr:    addr,
		service: service,
	}

	s.registerRoutes(gatherer)

	return s
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.app.Get("/ring", s.handleRing)
	s.app.Get("/keyspaces", s.handleListKeyspaces)
	s.app.Post("/keyspaces", s.handleCreateKeyspace)
	s.app.Get("/keyspaces/:name/endpoints", s.handleEndpoints)
	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func (s *Server) Start() error {
	return s.app.Listen(s.addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func (s *Server) handleRing(c *fiber.Ctx) error {
	return c.JSON(s.service.Ring(c.UserContext()))
}

func (s *Server) handleListKeyspaces(c *fiber.Ctx) error {
	return c.JSON(s.service.Keyspaces(c.UserContext()))
}

func (s *Server) handleCreateKeyspace(c *fiber.Ctx) error {
	var ks domain.Keyspace
	if err := c.BodyParser(&ks); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid body: %v", err))
	}

	if err := s.service.CreateKeyspace(c.UserContext(), ks); err != nil {
		sdklogger.Warnw("Create keyspace failed", "keyspace", ks.Name, "error", err.Error())
		status := fiber.StatusBadRequest
		if errors.Is(err, domain.ErrKeyspaceExists) {
			status = fiber.StatusConflict
		}
		return s.sendJSONError(c, status, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(ks)
}

func (s *Server) handleEndpoints(c *fiber.Ctx) error {
	keyspace := c.Params("name")
	tokenParam := c.Query("token")
	keyParam := c.Query("key")

	var (
		token     locator.Token
		endpoints []locator.Endpoint
		err       error
	)
	switch {
	case tokenParam != "":
		token, err = locator.ParseToken(tokenParam)
		if err != nil {
			return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid 'token' query parameter: %v", err))
		}
		endpoints, err = s.service.NaturalEndpoints(c.UserContext(), keyspace, token)
	case keyParam != "":
		token, endpoints, err = s.service.EndpointsForKey(c.UserContext(), keyspace, []byte(keyParam))
	default:
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'token' or 'key' query parameter")
	}

	if err != nil {
		if errors.Is(err, domain.ErrKeyspaceNotFound) {
			return s.sendJSONError(c, fiber.StatusNotFound, err.Error())
		}
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(endpointsResponse{
		Keyspace:  keyspace,
		Token:     token.String(),
		Endpoints: endpoints,
	})
}
