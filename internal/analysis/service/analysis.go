package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
	apperrors "github.com/lk2023060901/trendpulse-backend/internal/pkg/errors"
)

// TrendService exposes keyword analysis over HTTP
type TrendService struct {
	uc     *biz.TrendAnalyzer
	logger *zap.Logger
}

func NewTrendService(uc *biz.TrendAnalyzer, logger *zap.Logger) *TrendService {
	return &TrendService{
		uc:     uc,
		logger: logger,
	}
}

// AnalyzeRequest is the analysis request body. The keyword is validated in
// the use case so empty and missing values share one canonical error.
type AnalyzeRequest struct {
	Keyword string `json:"keyword"`
}

// AnalyzeKeyword handles POST /analyze. A successful response is the bare
// analysis object, errors are rendered as {"error": "<message>"}.
func (s *TrendService) AnalyzeKeyword(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.uc.AnalyzeKeyword(c.Request.Context(), req.Keyword)
	if err != nil {
		s.respondError(c, req.Keyword, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *TrendService) respondError(c *gin.Context, keyword string, err error) {
	code := apperrors.ExtractCode(err)
	status := apperrors.GetHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("keyword analysis failed",
			zap.String("keyword", keyword),
			zap.Int("code", code),
			zap.Error(err))
	} else {
		s.logger.Warn("keyword analysis rejected",
			zap.String("keyword", keyword),
			zap.Int("code", code),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": apperrors.GetMessage(code)})
}

func (s *TrendService) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/analyze", s.AnalyzeKeyword)
}
