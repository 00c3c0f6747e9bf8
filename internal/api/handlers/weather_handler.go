package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clockpro/backend/internal/services"
	"github.com/clockpro/backend/internal/utils"
)

type WeatherHandler struct {
	svc services.WeatherService
}

func NewWeatherHandler(svc services.WeatherService) *WeatherHandler {
	return &WeatherHandler{svc: svc}
}

func (h *WeatherHandler) Current(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Param("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Param("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WeatherHandler.Current", "valid latitude and longitude are required", nil))
		return
	}

	res, err := h.svc.Current(c.Request.Context(), lat, lon, c.DefaultQuery("units", "metric"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather":  res.Weather,
		"location": res.Location,
		"cached":   res.Cached,
	})
}

func (h *WeatherHandler) ByCity(c *gin.Context) {
	res, err := h.svc.ByCity(c.Request.Context(), c.Param("cityName"), c.DefaultQuery("units", "metric"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather":  res.Weather,
		"location": res.Location,
		"cached":   res.Cached,
	})
}

func (h *WeatherHandler) Forecast(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Param("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Param("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WeatherHandler.Forecast", "valid latitude and longitude are required", nil))
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "5"))

	report, err := h.svc.Forecast(c.Request.Context(), lat, lon, c.DefaultQuery("units", "metric"), days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"location": report.Location,
		"hourly":   report.Hourly,
		"daily":    report.Daily,
	})
}

func (h *WeatherHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	cities, err := h.svc.SearchCities(c.Request.Context(), c.Param("query"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
