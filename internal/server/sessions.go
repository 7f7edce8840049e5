package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type analyzeRequest struct {
	Input string `json:"input"`
}

func (s *Server) createSession(c echo.Context) error {
	id, err := s.orchestrator.StartSession("")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) getSession(c echo.Context) error {
	sess, ok := s.orchestrator.Session(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Input == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "input is required")
	}
	id := c.Param("id")
	if _, ok := s.orchestrator.Session(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	env := s.orchestrator.Process(c.Request().Context(), req.Input, id)
	status := http.StatusOK
	if env.Status == "error" {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, env)
}

func (s *Server) getRecords(c echo.Context) error {
	sess, ok := s.orchestrator.Session(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":        sess.ID,
		"execution_results": sess.Results,
	})
}

func (s *Server) getHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, s.orchestrator.History())
}

func (s *Server) getStats(c echo.Context) error {
	if s.metrics == nil {
		return echo.NewHTTPError(http.StatusNotFound, "telemetry disabled")
	}
	return c.JSON(http.StatusOK, s.metrics.Stats())
}
