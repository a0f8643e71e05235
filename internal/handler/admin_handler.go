package handler

import (
	"net/http"
	"strconv"

	"anoa.com/betpoints/internal/dto"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/response"
	"anoa.com/betpoints/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	admin  service.AdminService
	search service.SearchService
	log    *logrus.Logger
}

func NewAdminHandler(admin service.AdminService, search service.SearchService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, search: search, log: log}
}

func (h *AdminHandler) CreatePointType(c *gin.Context) {
	var req dto.CreatePointTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	pt, err := h.admin.CreatePointType(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, pt)
}

func (h *AdminHandler) UpdatePointType(c *gin.Context) {
	var req dto.UpdatePointTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.admin.UpdatePointType(c.Request.Context(), c.Param("slug"), req); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "point type updated"})
}

func (h *AdminHandler) ListPointTypes(c *gin.Context) {
	pts, err := h.admin.ListPointTypes(c.Request.Context())
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, pts)
}

func (h *AdminHandler) CreateRank(c *gin.Context) {
	var req dto.CreateRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	rank, err := h.admin.CreateRank(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, rank)
}

func (h *AdminHandler) CreateEarningRule(c *gin.Context) {
	var req dto.CreateEarningRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	rule, err := h.admin.CreateEarningRule(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (h *AdminHandler) ListEarningRules(c *gin.Context) {
	rules, err := h.admin.ListEarningRules(c.Request.Context())
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *AdminHandler) DeleteEarningRule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err := h.admin.DeleteEarningRule(c.Request.Context(), uint(id)); err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "earning rule deleted"})
}

func (h *AdminHandler) CreateAchievement(c *gin.Context) {
	var req dto.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	achievement, err := h.admin.CreateAchievement(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, achievement)
}

// UploadIcon stores a badge or point type icon and returns its URL. The
// returned URL is meant to be passed back in a create/update request.
func (h *AdminHandler) UploadIcon(c *gin.Context) {
	fileHeader, err := c.FormFile("icon")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file icon wajib diisi"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gagal memuat file icon"})
		return
	}
	defer file.Close()

	kind := c.DefaultPostForm("kind", "misc")
	url, err := h.admin.UploadIcon(c.Request.Context(), file, kind, fileHeader.Filename)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// SearchTransactions is the audit search endpoint backed by the search
// index, not the primary database.
func (h *AdminHandler) SearchTransactions(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.search.SearchTransactions(query, c.Query("user_id"), int64(limit))
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
