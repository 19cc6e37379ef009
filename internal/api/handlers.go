package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridecoach/internal/analysis"
	"ridecoach/internal/service"
	"ridecoach/internal/store"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.query.GetProfile()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileRequest struct {
	Firstname  string  `json:"firstname"`
	Lastname   string  `json:"lastname"`
	FTP        float64 `json:"ftp" binding:"required"`
	MaxHR      float64 `json:"max_hr" binding:"required"`
	FastTwitch bool    `json:"fast_twitch"`
}

func (s *Server) putProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err)
		return
	}

	athlete := &store.Athlete{
		Firstname:  req.Firstname,
		Lastname:   req.Lastname,
		FTP:        req.FTP,
		MaxHR:      req.MaxHR,
		FastTwitch: req.FastTwitch,
	}
	if err := s.query.SaveProfile(athlete); err != nil {
		if errors.Is(err, analysis.ErrInvalidProfile) {
			failWith(c, http.StatusBadRequest, err)
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, service.Profile{Athlete: *athlete, Saved: true})
}

func (s *Server) listGoals(c *gin.Context) {
	goals, err := s.query.ListGoals()
	if err != nil {
		fail(c, err)
		return
	}
	if goals == nil {
		goals = []store.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

type goalRequest struct {
	Title       string     `json:"title" binding:"required"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	TargetValue string     `json:"target_value"`
	Deadline    *time.Time `json:"deadline"`
	IsActive    *bool      `json:"is_active"`
}

func (s *Server) createGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, err)
		return
	}

	goal := &store.Goal{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Deadline:    req.Deadline,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.query.CreateGoal(goal); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (s *Server) deleteGoal(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.query.DeleteGoal(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listActivities(c *gin.Context) {
	limit, err := queryInt(c, "limit", service.RecentRidesLimit)
	if err != nil {
		failWith(c, http.StatusBadRequest, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		failWith(c, http.StatusBadRequest, err)
		return
	}

	rides, err := s.query.ListRides(limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	if rides == nil {
		rides = []store.RideRow{}
	}
	c.JSON(http.StatusOK, rides)
}

type analysisResponse struct {
	Activity        store.Activity  `json:"activity"`
	Analysis        *store.Analysis `json:"analysis"`
	DriftAssessment string          `json:"drift_assessment,omitempty"`
}

func (s *Server) getAnalysis(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}

	detail, err := s.query.GetRideDetail(id)
	if err != nil {
		fail(c, err)
		return
	}
	if detail.Analysis == nil {
		fail(c, store.ErrAnalysisNotFound)
		return
	}

	c.JSON(http.StatusOK, analysisResponse{
		Activity:        detail.Activity,
		Analysis:        detail.Analysis,
		DriftAssessment: detail.DriftAssessment,
	})
}

func (s *Server) analyze(c *gin.Context) {
	if s.analyzer == nil {
		failWith(c, http.StatusServiceUnavailable, errors.New("strava is not configured"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}

	an, err := s.analyzer.AnalyzeActivity(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, an)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}
