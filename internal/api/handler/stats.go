package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-fantasy/internal/api/respond"
	"github.com/albapepper/scoracle-fantasy/internal/cache"
	"github.com/albapepper/scoracle-fantasy/internal/roster"
	"github.com/albapepper/scoracle-fantasy/internal/stats"
	"github.com/albapepper/scoracle-fantasy/internal/store"
)

// First season nflverse publishes play-by-play for, and the last week number
// a postseason can reach.
const (
	minSeason = 1999
	maxWeek   = 22
)

// PlayerWeekResponse is one scored player-week.
type PlayerWeekResponse struct {
	PlayerID string       `json:"player_id"`
	Year     int          `json:"year"`
	Week     int          `json:"week"`
	Roster   roster.Entry `json:"roster"`
	Stats    stats.Record `json:"stats"`
}

// DefenseWeekResponse is one scored team-defense week.
type DefenseWeekResponse struct {
	Team  string       `json:"team"`
	Year  int          `json:"year"`
	Week  int          `json:"week"`
	Stats stats.Record `json:"stats"`
}

// PlayerDocumentResponse is a player's whole scoring history.
type PlayerDocumentResponse struct {
	PlayerID string                       `json:"player_id"`
	Roster   roster.Entry                 `json:"roster"`
	Scoring  map[int]map[int]stats.Record `json:"scoring"`
}

// GetPlayer returns a player's roster entry and every scored week.
// @Summary Get player document
// @Description Returns the roster entry and all scored weeks, keyed by year then week.
// @Tags players
// @Produce json
// @Param playerID path string true "nflverse GSIS player id"
// @Success 200 {object} PlayerDocumentResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	ttl := cache.TTLCurrentSeason
	if h.serveCached(w, r, ttl) {
		return
	}

	doc, ok, err := h.store.PlayerDocument(r.Context(), playerID)
	if err != nil {
		h.internalError(w, "player document", err)
		return
	}
	if !ok {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Player not found: "+playerID)
		return
	}
	doc.Roster.ID = playerID
	h.writeFresh(w, r, ttl, PlayerDocumentResponse{
		PlayerID: playerID,
		Roster:   doc.Roster,
		Scoring:  doc.Scoring,
	})
}

// GetPlayerWeek returns one player-week record.
// @Summary Get player week
// @Description Returns the scored record for a player in one week. Weeks with no activity read as all-zero.
// @Tags players
// @Produce json
// @Param playerID path string true "nflverse GSIS player id"
// @Param year path int true "Season year"
// @Param week path int true "Week number"
// @Success 200 {object} PlayerWeekResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID}/{year}/{week} [get]
func (h *Handler) GetPlayerWeek(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	year, week, ok := h.yearWeek(w, r)
	if !ok {
		return
	}
	ttl := h.seasonTTL(year)
	if h.serveCached(w, r, ttl) {
		return
	}

	entry, found, err := h.store.Roster(r.Context(), playerID)
	if err != nil {
		h.internalError(w, "roster lookup", err)
		return
	}
	if !found {
		respond.WriteError(w, http.StatusNotFound, respond.CodeNotFound, "Player not found: "+playerID)
		return
	}
	rec, err := h.store.Get(r.Context(), store.PlayerKey(playerID, year, week))
	if err != nil {
		h.internalError(w, "player week", err)
		return
	}
	entry.ID = playerID
	h.writeFresh(w, r, ttl, PlayerWeekResponse{
		PlayerID: playerID,
		Year:     year,
		Week:     week,
		Roster:   entry,
		Stats:    rec,
	})
}

// GetDefenseWeek returns one team-defense week record.
// @Summary Get defense week
// @Description Returns the scored defense/special-teams record for a team in one week. Weeks with no activity read as all-zero.
// @Tags defenses
// @Produce json
// @Param team path string true "Team abbreviation" example(KC)
// @Param year path int true "Season year"
// @Param week path int true "Week number"
// @Success 200 {object} DefenseWeekResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /defenses/{team}/{year}/{week} [get]
func (h *Handler) GetDefenseWeek(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(chi.URLParam(r, "team"))
	if !validTeam(team) {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest, "team must be a 2-3 letter abbreviation")
		return
	}
	year, week, ok := h.yearWeek(w, r)
	if !ok {
		return
	}
	ttl := h.seasonTTL(year)
	if h.serveCached(w, r, ttl) {
		return
	}

	rec, err := h.store.Get(r.Context(), store.DefenseKey(team, year, week))
	if err != nil {
		h.internalError(w, "defense week", err)
		return
	}
	h.writeFresh(w, r, ttl, DefenseWeekResponse{Team: team, Year: year, Week: week, Stats: rec})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// serveCached answers from the cache, with a 304 when the client already
// holds the current ETag. It reports whether the response was written.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, ttl time.Duration) bool {
	data, etag, ok := h.cache.Get(r.URL.Path)
	if !ok {
		return false
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return true
	}
	respond.WriteJSON(w, data, etag, ttl, true)
	return true
}

func (h *Handler) writeFresh(w http.ResponseWriter, r *http.Request, ttl time.Duration, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.internalError(w, "encode response", err)
		return
	}
	etag := h.cache.Set(r.URL.Path, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

func (h *Handler) internalError(w http.ResponseWriter, what string, err error) {
	h.logger.Error("Request failed", "op", what, "error", err)
	respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to read "+what)
}

func (h *Handler) yearWeek(w http.ResponseWriter, r *http.Request) (year, week int, ok bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < minSeason || year > h.cfg.CurrentSeason+1 {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest,
			fmt.Sprintf("year must be between %d and %d", minSeason, h.cfg.CurrentSeason+1))
		return 0, 0, false
	}
	week, err = strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 || week > maxWeek {
		respond.WriteError(w, http.StatusBadRequest, respond.CodeBadRequest,
			fmt.Sprintf("week must be between 1 and %d", maxWeek))
		return 0, 0, false
	}
	return year, week, true
}

// seasonTTL keeps past seasons longer; they only change on a rescore.
func (h *Handler) seasonTTL(year int) time.Duration {
	if year >= h.cfg.CurrentSeason {
		return cache.TTLCurrentSeason
	}
	return cache.TTLHistorical
}

func validTeam(team string) bool {
	if len(team) < 2 || len(team) > 3 {
		return false
	}
	for _, c := range team {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
