package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type statusResponse struct {
	Repository string `json:"repository"`
	Revision   int    `json:"revision"`
	Documents  uint64 `json:"documents"`
}

type searchHit struct {
	Path      string   `json:"path"`
	Author    string   `json:"author,omitempty"`
	Revision  int      `json:"revision"`
	Score     float64  `json:"score"`
	Fragments []string `json:"fragments,omitempty"`
}

type searchResponse struct {
	Query string      `json:"query"`
	Total uint64      `json:"total"`
	Hits  []searchHit `json:"hits"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	count, err := s.store.DocCount()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, statusResponse{
		Repository: s.state.RepositoryURL,
		Revision:   s.state.Revision,
		Documents:  count,
	})
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter q")
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	results, total, err := s.store.Search(query, limit)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	resp := searchResponse{Query: query, Total: total, Hits: make([]searchHit, 0, len(results))}
	for _, r := range results {
		resp.Hits = append(resp.Hits, searchHit{
			Path:      r.Path,
			Author:    r.Author,
			Revision:  r.Revision,
			Score:     r.Score,
			Fragments: r.Fragments,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
