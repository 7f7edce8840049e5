package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) searchKnowledge(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": s.orchestrator.KnowledgeSearch(q, limit),
	})
}

func (s *Server) getKnowledgeMethod(c echo.Context) error {
	rec, ok := s.orchestrator.KnowledgeMethod(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "method not found")
	}
	return c.JSON(http.StatusOK, rec)
}
