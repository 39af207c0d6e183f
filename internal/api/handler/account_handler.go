package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/99minutos/ledger-system/internal/api/middleware"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// CSRFHeader carries the anti-forgery token in both directions.
const CSRFHeader = "X-CSRF-Token"

type AccountHandler struct {
	service ports.LedgerService
}

func NewAccountHandler(service ports.LedgerService) *AccountHandler {
	return &AccountHandler{service: service}
}

// View returns the caller's account and a fresh CSRF token. Anonymous
// callers get authenticated=false rather than an error.
//
// @Summary      View account
// @Tags         account
// @Produce      json
// @Success      200   {object}  accountResponse
// @Router       /account [get]
func (h *AccountHandler) View(c echo.Context) error {
	view, err := h.service.ViewAccount(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	if view == nil {
		return c.JSON(http.StatusOK, accountResponse{Authenticated: false})
	}

	c.Response().Header().Set(CSRFHeader, view.CSRFToken)
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	balance := view.Balance
	return c.JSON(http.StatusOK, accountResponse{
		Authenticated:  true,
		Username:       view.Username,
		Balance:        &balance,
		BalanceDisplay: decimal.NewFromInt(balance).StringFixed(2),
		CSRFToken:      view.CSRFToken,
	})
}
