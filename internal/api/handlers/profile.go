package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-bca/internal/analysis"
	"storage-bca/internal/api/models"
	"storage-bca/internal/model"
)

// Profile handles GET /api/v1/profile
func (h *EvaluateHandler) Profile(c *gin.Context) {
	var req models.ProfileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if h.table == nil {
		abortWithError(c, http.StatusNotFound, "NO_TIMESERIES", errors.New("no time series configured"))
		return
	}
	market, err := model.ParseMarketType(req.MarketType)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_MARKET_TYPE", err)
		return
	}
	mult := req.Multiplier
	if mult <= 0 {
		mult = h.cfg.Dispatch.DischargePriceMultiplier
	}

	p, err := analysis.ProfilePrices(h.table, market, req.Wholesale, mult)
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "MISSING_INPUT", err)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{
		Market:         p.Market,
		Start:          p.Start,
		End:            p.End,
		Count:          p.Count,
		Min:            p.Min,
		Max:            p.Max,
		Mean:           p.Mean,
		P05:            p.P05,
		P95:            p.P95,
		SpreadP95P05:   p.SpreadP95P05,
		NegativeShare:  p.NegativeShare,
		DischargeShare: p.DischargeShare,
	})
}
