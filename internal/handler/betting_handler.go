package handler

import (
	"net/http"
	"strconv"

	"anoa.com/betpoints/internal/dto"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/response"
	"anoa.com/betpoints/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BettingHandler struct {
	betting service.BettingService
	log     *logrus.Logger
}

func NewBettingHandler(betting service.BettingService, log *logrus.Logger) *BettingHandler {
	return &BettingHandler{betting: betting, log: log}
}

func (h *BettingHandler) PlaceBet(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req dto.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	bet, err := h.betting.PlaceBet(c.Request.Context(), userID, req.PredictionID, req.Amount, req.Choice)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, bet)
}

func (h *BettingHandler) ListBets(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bets, total, err := h.betting.ListBets(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedResponse{Items: bets, Total: total, Limit: limit, Offset: offset})
}

func (h *BettingHandler) ListOpenPredictions(c *gin.Context) {
	predictions, err := h.betting.ListOpenPredictions(c.Request.Context())
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, predictions)
}

// Admin / prediction-collaborator endpoints.

func (h *BettingHandler) CreatePrediction(c *gin.Context) {
	var req dto.CreatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	prediction, err := h.betting.CreatePrediction(c.Request.Context(), req.Title, req.Choices, req.OddsBps, req.ClosesAt)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, prediction)
}

func (h *BettingHandler) ResolvePrediction(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	var req dto.ResolveBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.betting.ResolvePrediction(c.Request.Context(), predictionID, req.Outcome); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prediction resolved"})
}

func (h *BettingHandler) CancelPrediction(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	if err := h.betting.CancelPrediction(c.Request.Context(), predictionID); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prediction cancelled, stakes refunded"})
}

func (h *BettingHandler) ResolveBet(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	var req dto.ResolveBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	bet, err := h.betting.ResolveBet(c.Request.Context(), betID, req.Outcome)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}
