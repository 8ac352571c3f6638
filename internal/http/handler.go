package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lcharvet/sav-coverage/internal/engine"
	"github.com/lcharvet/sav-coverage/internal/model"
	"github.com/lcharvet/sav-coverage/internal/service"
)

type Handler struct {
	coverage *service.CoverageService
	kpis     *service.KPIService
	log      zerolog.Logger
}

func NewHandler(coverage *service.CoverageService, kpis *service.KPIService, log zerolog.Logger) *Handler {
	return &Handler{coverage: coverage, kpis: kpis, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	if authMiddleware != nil {
		protected.Use(authMiddleware)
	}
	protected.POST("/decisions/coverage", h.decideCoverage)
	protected.POST("/decisions/coverage/pdf", h.decideCoveragePDF)
	protected.GET("/portfolio/export", h.exportPortfolio)
	protected.POST("/kpi/expected", h.recordKPIExpected)
	protected.POST("/kpi/actual", h.recordKPIActual)
	protected.GET("/kpi/contracts/:contract_id/series", h.kpiSeries)
	protected.GET("/kpi/contracts/:contract_id/alerts", h.kpiAlerts)
}

type coverageInputs struct {
	SerialNumber    string `json:"serial_number"`
	ProofProvided   *bool  `json:"proof_provided"`
	Country         string `json:"country"`
	Channel         string `json:"channel"`
	PurchaseDate    string `json:"purchase_date"`
	ActivationDate  string `json:"activation_date"`
	ManufactureDate string `json:"manufacture_date"`
}

type coverageRequest struct {
	Scope      string         `json:"scope" binding:"required"`
	ContractID string         `json:"contract_id"`
	AppendixID string         `json:"appendix_id"`
	ProductID  string         `json:"product_id" binding:"required"`
	EventDate  string         `json:"event_date" binding:"required"`
	Inputs     coverageInputs `json:"inputs"`
}

type decisionResponse struct {
	Eligible           bool                `json:"eligible"`
	InWarranty         *bool               `json:"in_warranty"`
	RequiredInputs     []string            `json:"required_inputs"`
	AllowedResolutions []engine.Resolution `json:"allowed_resolutions"`
	ReasonCodes        []engine.ReasonCode `json:"reason_codes"`
	ResolvedContractID *uuid.UUID          `json:"resolved_contract_id,omitempty"`
	ResolvedAppendixID *uuid.UUID          `json:"resolved_appendix_id,omitempty"`
	ResolvedLineID     *uuid.UUID          `json:"resolved_line_id,omitempty"`
	WarrantyEndDate    string              `json:"warranty_end_date,omitempty"`
}

func (h *Handler) decideCoverage(c *gin.Context) {
	input, ok := h.bindCoverageRequest(c)
	if !ok {
		return
	}

	decision, err := h.coverage.Decide(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDecisionResponse(decision))
}

func (h *Handler) decideCoveragePDF(c *gin.Context) {
	input, ok := h.bindCoverageRequest(c)
	if !ok {
		return
	}

	result, err := h.coverage.DecisionReport(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) exportPortfolio(c *gin.Context) {
	result, err := h.coverage.ExportPortfolio(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

type kpiRecordRequest struct {
	ContractID string `json:"contract_id" binding:"required"`
	Type       string `json:"kpi_type" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Value      int    `json:"value"`
}

func (h *Handler) recordKPIExpected(c *gin.Context) {
	h.recordKPI(c, h.kpis.RecordExpected)
}

func (h *Handler) recordKPIActual(c *gin.Context) {
	h.recordKPI(c, h.kpis.RecordActual)
}

func (h *Handler) recordKPI(c *gin.Context, record func(ctx context.Context, input service.KPIRecordInput) error) {
	var req kpiRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contractID, err := uuid.Parse(strings.TrimSpace(req.ContractID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	if err := record(c.Request.Context(), service.KPIRecordInput{
		ContractID: contractID,
		Type:       model.KPIType(strings.ToLower(strings.TrimSpace(req.Type))),
		Date:       date,
		Value:      req.Value,
	}); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) kpiSeries(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("contract_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
		return
	}

	series, err := h.kpis.Series(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *Handler) kpiAlerts(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("contract_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
		return
	}

	alerts, err := h.kpis.Alerts(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) bindCoverageRequest(c *gin.Context) (service.DecideInput, bool) {
	var req coverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.DecideInput{}, false
	}

	input := service.DecideInput{}

	switch strings.ToLower(strings.TrimSpace(req.Scope)) {
	case "contract":
		id, err := uuid.Parse(strings.TrimSpace(req.ContractID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
			return service.DecideInput{}, false
		}
		input.ContractID = &id
	case "appendix":
		id, err := uuid.Parse(strings.TrimSpace(req.AppendixID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appendix_id"})
			return service.DecideInput{}, false
		}
		input.AppendixID = &id
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be contract or appendix"})
		return service.DecideInput{}, false
	}

	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
		return service.DecideInput{}, false
	}
	input.ProductID = productID

	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_date"})
		return service.DecideInput{}, false
	}
	input.EventDate = eventDate

	inputs, err := parseClaimInputs(req.Inputs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.DecideInput{}, false
	}
	input.Inputs = inputs

	return input, true
}

// parseClaimInputs normalizes the claimant bundle the way the engine
// expects: trimmed serial, upper-case country, lower-case channel.
func parseClaimInputs(raw coverageInputs) (engine.ClaimInputs, error) {
	inputs := engine.ClaimInputs{
		SerialNumber:  strings.TrimSpace(raw.SerialNumber),
		ProofProvided: raw.ProofProvided,
		Country:       strings.ToUpper(strings.TrimSpace(raw.Country)),
		Channel:       strings.ToLower(strings.TrimSpace(raw.Channel)),
	}

	dates := []struct {
		value  string
		name   string
		target **time.Time
	}{
		{raw.PurchaseDate, "purchase_date", &inputs.PurchaseDate},
		{raw.ActivationDate, "activation_date", &inputs.ActivationDate},
		{raw.ManufactureDate, "manufacture_date", &inputs.ManufactureDate},
	}
	for _, field := range dates {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		parsed, err := parseDate(field.value)
		if err != nil {
			return engine.ClaimInputs{}, errors.New("invalid " + field.name)
		}
		*field.target = &parsed
	}

	return inputs, nil
}

func toDecisionResponse(decision engine.Decision) decisionResponse {
	resp := decisionResponse{
		Eligible:           decision.Eligible,
		InWarranty:         decision.InWarranty,
		RequiredInputs:     decision.RequiredInputs,
		AllowedResolutions: decision.AllowedResolutions,
		ReasonCodes:        decision.ReasonCodes,
		ResolvedContractID: decision.ResolvedContractID,
		ResolvedAppendixID: decision.ResolvedAppendixID,
		ResolvedLineID:     decision.ResolvedLineID,
	}
	if decision.WarrantyEndDate != nil {
		resp.WarrantyEndDate = decision.WarrantyEndDate.Format("2006-01-02")
	}
	return resp
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var integrity *engine.DataIntegrityError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &integrity):
		h.log.Error().Err(err).Msg("hierarchy integrity fault")
		c.JSON(http.StatusInternalServerError, gin.H{"error": integrity.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
