package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"SignalBoard/internal/export"
	"SignalBoard/internal/model"
)

const (
	previewRows   = 10
	recentSignals = 50
)

type loginRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// PreviewRow is one line of the latest-rows table.
type PreviewRow struct {
	Time    time.Time `json:"time"`
	Close   float64   `json:"close"`
	SMAFast *float64  `json:"sma_fast"`
	SMASlow *float64  `json:"sma_slow"`
	RSI     *float64  `json:"rsi"`
}

// AnalysisResponse is the body of GET /api/analysis. Undefined indicator
// values are null.
type AnalysisResponse struct {
	Symbol        string                `json:"symbol"`
	Interval      string                `json:"interval"`
	Strategy      string                `json:"strategy"`
	Bars          []model.Bar           `json:"bars"`
	Series        map[string][]*float64 `json:"series"`
	Signals       []model.Signal        `json:"signals"`
	Preview       []PreviewRow          `json:"preview"`
	RecentSignals []model.Signal        `json:"recent_signals"`
	Summary       model.Summary         `json:"summary"`
	Message       string                `json:"message"`
}

// Login handles POST /login.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, err, http.StatusBadRequest, "invalid login payload")
		return
	}
	if err := s.auth.Check(req.Password, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrAuthNotConfigured):
			s.handleError(c, err, http.StatusServiceUnavailable,
				"Dashboard password is not configured: set auth.password or AUTH_PASSWORD.")
		default:
			s.handleError(c, err, http.StatusUnauthorized, "Incorrect password.")
		}
		return
	}

	id := s.sessions.Create()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, id, int(s.sessions.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Logout handles POST /logout and clears the session.
func (s *Server) Logout(c *gin.Context) {
	if id, err := c.Cookie(SessionCookieName); err == nil {
		s.sessions.Delete(id)
	}
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// GetAnalysis handles GET /api/analysis.
func (s *Server) GetAnalysis(c *gin.Context) {
	a, ok := s.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildResponse(a))
}

// ExportData handles GET /api/export/data.csv.
func (s *Server) ExportData(c *gin.Context) {
	a, ok := s.analyze(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteDataCSV(&buf, a); err != nil {
		s.handleError(c, err, http.StatusInternalServerError, "export failed")
		return
	}
	attachment(c, export.DataFileName(a.Symbol, a.Interval), buf.Bytes())
}

// ExportSignals handles GET /api/export/signals.csv. No signals means no
// file.
func (s *Server) ExportSignals(c *gin.Context) {
	a, ok := s.analyze(c)
	if !ok {
		return
	}
	if len(a.Signals) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteSignalsCSV(&buf, a.Signals); err != nil {
		s.handleError(c, err, http.StatusInternalServerError, "export failed")
		return
	}
	attachment(c, export.SignalsFileName(a.Symbol), buf.Bytes())
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

func (s *Server) analyze(c *gin.Context) (*model.Analysis, bool) {
	req, err := ParseAnalysisRequest(c, s.now())
	if err != nil {
		s.handleAnalysisError(c, err)
		return nil, false
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	a, err := s.analyzer.Analyze(ctx, req.Query, req.Params)
	if err != nil {
		s.handleAnalysisError(c, err)
		return nil, false
	}
	return a, true
}

func buildResponse(a *model.Analysis) AnalysisResponse {
	resp := AnalysisResponse{
		Symbol:   a.Symbol,
		Interval: a.Interval,
		Strategy: a.Strategy,
		Bars:     a.Bars,
		Series: map[string][]*float64{
			a.SMAFast.Name: a.SMAFast.Nullable(),
			a.SMASlow.Name: a.SMASlow.Nullable(),
			a.RSI.Name:     a.RSI.Nullable(),
		},
		Signals:       nonNil(a.Signals),
		RecentSignals: nonNil(tail(a.Signals, recentSignals)),
		Summary:       a.Summary,
		Message:       summaryMessage(a),
	}

	from := len(a.Bars) - previewRows
	if from < 0 {
		from = 0
	}
	fast, slow, rsi := a.SMAFast.Nullable(), a.SMASlow.Nullable(), a.RSI.Nullable()
	for i := from; i < len(a.Bars); i++ {
		resp.Preview = append(resp.Preview, PreviewRow{
			Time:    a.Bars[i].Time,
			Close:   a.Bars[i].Close,
			SMAFast: fast[i],
			SMASlow: slow[i],
			RSI:     rsi[i],
		})
	}
	return resp
}

func summaryMessage(a *model.Analysis) string {
	last := a.Summary.LastSignal
	if last == nil {
		return "No signals detected"
	}
	times := make([]time.Time, len(a.Bars))
	for i, b := range a.Bars {
		times[i] = b.Time
	}
	return fmt.Sprintf("Last signal: %s • %s", last.Kind, last.Time.Format(export.TimeLayout(times)))
}

func tail(signals []model.Signal, n int) []model.Signal {
	if len(signals) <= n {
		return signals
	}
	return signals[len(signals)-n:]
}

func nonNil(signals []model.Signal) []model.Signal {
	if signals == nil {
		return []model.Signal{}
	}
	return signals
}

func attachment(c *gin.Context, name string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// handleAnalysisError maps engine and provider failures to a status and a
// user-facing message.
func (s *Server) handleAnalysisError(c *gin.Context, err error) {
	var inErr *model.InputError
	switch {
	case errors.As(err, &inErr):
		s.handleError(c, err, http.StatusBadRequest, inErr.Error())
	case errors.Is(err, model.ErrSymbolNotFound):
		s.handleError(c, err, http.StatusNotFound, "Symbol not found: check the pair.")
	case errors.Is(err, model.ErrNoData):
		s.handleError(c, err, http.StatusUnprocessableEntity,
			"No data retrieved: check the symbol, dates or interval.")
	case errors.Is(err, model.ErrMissingClose):
		s.handleError(c, err, http.StatusUnprocessableEntity, "No close prices in the downloaded data.")
	case errors.Is(err, context.DeadlineExceeded):
		s.handleError(c, err, http.StatusGatewayTimeout, "Market data provider timed out.")
	default:
		s.handleError(c, err, http.StatusBadGateway, "Error while loading data.")
	}
}

// handleError logs the error and sends the JSON error body.
func (s *Server) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	id := requestID(c)
	s.logger.Error("API error",
		slog.String("request_id", id),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)
	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": id,
	})
}
