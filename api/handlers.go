package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/cache"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/gin-gonic/gin"
)

// searchRequest is the wire shape of a POST /v1/search body.
type searchRequest struct {
	Origin      string     `json:"origin" binding:"required"`
	Destination string     `json:"destination" binding:"required"`
	Departure   time.Time  `json:"departure" binding:"required"`
	Return      *time.Time `json:"return"`
	Cabin       string     `json:"cabin"`
	Adults      int        `json:"adults"`
	Children    int        `json:"children"`
	InfantsLap  int        `json:"infants_lap"`
	InfantsSeat int        `json:"infants_seat"`
}

func (r searchRequest) toQuery() deals.Query {
	cabin := deals.CabinClass(r.Cabin)
	if cabin == "" {
		cabin = deals.CabinEconomy
	}
	return deals.Query{
		Origin:      r.Origin,
		Destination: r.Destination,
		Departure:   r.Departure,
		Return:      r.Return,
		Cabin:       cabin,
		Adults:      r.Adults,
		Children:    r.Children,
		InfantsLap:  r.InfantsLap,
		InfantsSeat: r.InfantsSeat,
	}
}

// SearchDeals handles POST /v1/search: runs one deal search and returns
// the curated result.
func SearchDeals(orchestrator *deals.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := orchestrator.Search(c.Request.Context(), req.toQuery())
		if err != nil {
			if errors.Is(err, deals.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// SearchDealsGET handles GET /v1/search: the same search as the POST
// endpoint, but expressed as query parameters so the response can sit
// behind the HTTP response cache (idempotent GET, deterministic key).
func SearchDealsGET(orchestrator *deals.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		departure, err := time.Parse(time.RFC3339, c.Query("departure"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "departure must be an RFC3339 timestamp"})
			return
		}

		q := deals.Query{
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
			Departure:   departure,
			Cabin:       deals.CabinClass(c.DefaultQuery("cabin", string(deals.CabinEconomy))),
			Adults:      atoiOrDefault(c.Query("adults"), 1),
			Children:    atoiOrDefault(c.Query("children"), 0),
			InfantsLap:  atoiOrDefault(c.Query("infants_lap"), 0),
			InfantsSeat: atoiOrDefault(c.Query("infants_seat"), 0),
		}
		if ret := c.Query("return"); ret != "" {
			if parsed, err := time.Parse(time.RFC3339, ret); err == nil {
				q.Return = &parsed
			}
		}

		result, err := orchestrator.Search(c.Request.Context(), q)
		if err != nil {
			if errors.Is(err, deals.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func atoiOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClearCache handles POST /v1/admin/cache/clear: flushes the deal-search
// response cache.
func ClearCache(cacheManager *cache.CacheManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cacheManager.Clear(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}
