package handler

import (
	"net/http"
	"strconv"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type GamificationHandler struct {
	ranks        service.RankService
	achievements service.AchievementService
	leaderboard  service.LeaderboardService
	log          *logrus.Logger
}

func NewGamificationHandler(ranks service.RankService, achievements service.AchievementService, leaderboard service.LeaderboardService, log *logrus.Logger) *GamificationHandler {
	return &GamificationHandler{
		ranks:        ranks,
		achievements: achievements,
		leaderboard:  leaderboard,
		log:          log,
	}
}

func (h *GamificationHandler) GetMyRank(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	current, err := h.ranks.GetUserRank(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	next, err := h.ranks.GetNextRank(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current": current,
		"next":    next,
	})
}

func (h *GamificationHandler) ListAchievements(c *gin.Context) {
	// Secret achievements stay out of the public listing.
	achievements, err := h.achievements.ListPublic(c.Request.Context())
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

func (h *GamificationHandler) ListMyAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	unlocked, err := h.achievements.ListUnlocked(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, unlocked)
}

func (h *GamificationHandler) GetLeaderboard(c *gin.Context) {
	pointType := c.DefaultQuery("point_type", model.PointTypeBetcoins)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), pointType, limit)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
