package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ledger-system/internal/api/metrics"
	"github.com/99minutos/ledger-system/internal/api/middleware"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

type TransferHandler struct {
	service ports.LedgerService
	metrics *metrics.Metrics
}

func NewTransferHandler(service ports.LedgerService, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{service: service, metrics: m}
}

// Transfer moves funds from the caller to another account. The CSRF token is
// read from the X-CSRF-Token header, falling back to the csrf_token field.
//
// @Summary      Transfer funds
// @Tags         account
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        X-CSRF-Token  header    string           false  "CSRF token from GET /account"
// @Param        body          body      transferRequest  true   "Recipient and amount"
// @Success      200           {object}  transferResponse
// @Failure      400           {object}  errorBody
// @Failure      401           {object}  errorBody
// @Failure      403           {object}  errorBody
// @Failure      404           {object}  errorBody
// @Failure      409           {object}  errorBody
// @Failure      503           {object}  errorBody
// @Router       /transfer [post]
func (h *TransferHandler) Transfer(c echo.Context) error {
	start := time.Now()

	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token := c.Request().Header.Get(CSRFHeader)
	if token == "" {
		token = req.CSRFToken
	}

	res, err := h.service.Transfer(c.Request().Context(), ports.TransferInput{
		SessionID: middleware.SessionID(c),
		CSRFToken: token,
		Recipient: req.Username,
		Amount:    string(req.Amount),
	})
	if err != nil {
		h.metrics.ObserveTransfer(0, time.Since(start).Seconds(), err)
		return err
	}
	h.metrics.ObserveTransfer(res.Amount, time.Since(start).Seconds(), nil)

	return c.JSON(http.StatusOK, transferResponse{
		From:    res.From,
		To:      res.To,
		Amount:  res.Amount,
		Balance: res.Balance,
	})
}
