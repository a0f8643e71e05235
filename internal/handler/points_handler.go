package handler

import (
	"net/http"
	"strconv"

	"anoa.com/betpoints/internal/dto"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/response"
	"anoa.com/betpoints/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PointsHandler struct {
	points service.PointService
	rules  service.EarningRuleService
	log    *logrus.Logger
}

func NewPointsHandler(points service.PointService, rules service.EarningRuleService, log *logrus.Logger) *PointsHandler {
	return &PointsHandler{points: points, rules: rules, log: log}
}

// Trigger actions clients may emit about themselves. Everything else comes
// from server-side flows (registration, login, bet placement).
var clientTriggers = map[string]bool{
	model.TriggerProfileUpdated: true,
}

func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	pointType := c.Param("point_type")
	balance, err := h.points.GetBalance(c.Request.Context(), userID, pointType)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		PointType:   pointType,
		Balance:     balance.Balance,
		TotalEarned: balance.TotalEarned,
		TotalSpent:  balance.TotalSpent,
	})
}

func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.HistoryFilter{
		PointTypeSlug: c.Query("point_type"),
		Kind:          model.TransactionKind(c.Query("kind")),
		Limit:         limit,
		Offset:        offset,
	}

	txns, total, err := h.points.GetHistory(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedResponse{
		Items:  txns,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// EmitTrigger lets a client report an action about themselves to the earning
// rule engine. The rule caps and the redis burst guard bound what this can
// ever award.
func (h *PointsHandler) EmitTrigger(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req dto.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if !clientTriggers[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown trigger action"})
		return
	}

	awarded := h.rules.ProcessAction(c.Request.Context(), req.Action, userID, req.Context)
	c.JSON(http.StatusOK, gin.H{"awards": awarded})
}

// Adjust is the admin correction endpoint. Credits are unbounded, debits
// still cannot take a balance negative.
func (h *PointsHandler) Adjust(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	txn, err := h.points.Adjust(c.Request.Context(), req.UserID, req.Amount, req.PointType, req.Reason, adminID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// ConfirmPurchase credits betcoins after the payment collaborator verified
// the payment. Amount authenticity is the caller's responsibility.
func (h *PointsHandler) ConfirmPurchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	txn, err := h.points.Purchase(c.Request.Context(), req.UserID, req.Amount, model.PointTypeBetcoins, "purchase "+req.PaymentID)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}
