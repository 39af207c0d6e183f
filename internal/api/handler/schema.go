package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=128"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Username string `json:"username"`
}

type accountResponse struct {
	Authenticated  bool   `json:"authenticated"`
	Username       string `json:"username,omitempty"`
	Balance        *int64 `json:"balance,omitempty"`
	BalanceDisplay string `json:"balance_display,omitempty"`
	CSRFToken      string `json:"csrf_token,omitempty"`
}

// transferRequest carries the recipient in username, matching the form
// field name browsers already submit.
type transferRequest struct {
	Username  string     `json:"username"   form:"username"`
	Amount    amountText `json:"amount"     form:"amount"`
	CSRFToken string     `json:"csrf_token" form:"csrf_token"`
}

type transferResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  int64  `json:"amount"`
	Balance int64  `json:"balance"`
}

type errorBody struct {
	Error string `json:"error"`
}

// amountText keeps the amount as the caller sent it. JSON numbers and JSON
// strings are both accepted; parsing happens in the service.
type amountText string

func (a *amountText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = amountText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = amountText(n.String())
	}
	return nil
}

// UnmarshalParam lets echo bind the field from form and query values.
func (a *amountText) UnmarshalParam(param string) error {
	*a = amountText(param)
	return nil
}
