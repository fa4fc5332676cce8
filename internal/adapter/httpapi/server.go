package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"aptutor/internal/domain"
	"aptutor/internal/usecase"
)

// Asker answers a question end to end.
type Asker interface {
	Ask(ctx context.Context, question string) (*usecase.Answer, error)
}

// ContextSource exposes the retrieval core.
type ContextSource interface {
	Lookup(query string, maxChunks int) ([]domain.ScoredChunk, string, bool)
}

type Server struct {
	echo      *echo.Echo
	asker     Asker
	retrieval ContextSource
	maxChunks int
	log       *logrus.Entry
}

// NewServer wires the routes. metrics may be nil to leave /metrics out.
func NewServer(asker Asker, retrieval ContextSource, maxChunks int, metrics http.Handler, log *logrus.Entry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		asker:     asker,
		retrieval: retrieval,
		maxChunks: maxChunks,
		log:       log,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			}).Debug("request")
			return nil
		},
	}))
	e.HTTPErrorHandler = s.handleError

	e.GET("/health", s.handleHealth)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("/api/v1")
	api.GET("/context", s.handleContext)
	api.POST("/ask", s.handleAsk)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	s.log.Infof("Starting API server on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ContextResponse struct {
	Query   string               `json:"query"`
	Found   bool                 `json:"found"`
	Context string               `json:"context,omitempty"`
	Chunks  []domain.ScoredChunk `json:"chunks"`
}

type AskRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("uri", c.Request().URL.Path).Error("request failed")
	}
	if !c.Response().Committed {
		_ = c.JSON(code, ErrorResponse{Error: msg})
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleContext(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	k := s.maxChunks
	if raw := c.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be a non-negative integer")
		}
		k = n
	}

	chunks, text, found := s.retrieval.Lookup(query, k)
	if chunks == nil {
		chunks = []domain.ScoredChunk{}
	}

	return c.JSON(http.StatusOK, ContextResponse{
		Query:   query,
		Found:   found,
		Context: text,
		Chunks:  chunks,
	})
}

func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON")
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	answer, err := s.asker.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, answer)
}
