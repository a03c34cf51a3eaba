package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/colorsort/internal/api/apierr"
	"github.com/mcoot/colorsort/internal/api/request"
	"github.com/mcoot/colorsort/internal/api/response"
	"github.com/mcoot/colorsort/internal/services/account"
)

// AccountHandler handles registration and login
type AccountHandler struct {
	service *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service *account.Service) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// Create handles POST /api/v1/accounts and POST /create_account
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.Register(r.Context(), req.Username, req.Credential())
	if err != nil {
		writeAccountError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountSuccess(created.Username))
}

// Login handles POST /api/v1/accounts/login and POST /log_in
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	acct, err := h.service.Login(r.Context(), req.Username, req.Credential())
	if err != nil {
		writeAccountError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountSuccess(acct.Username))
}

func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request) (request.AccountRequest, bool) {
	var req request.AccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAccountError(w, err)
		return req, false
	}
	if strings.TrimSpace(req.Username) == "" {
		writeAccountError(w, NewInvalidRequestError("username is required"))
		return req, false
	}
	if req.Credential() == "" {
		writeAccountError(w, NewInvalidRequestError("password is required"))
		return req, false
	}
	return req, true
}

// writeAccountError adds success and message fields so login forms can show the reason
func writeAccountError(w http.ResponseWriter, err error) {
	he := apierr.ToHTTPError(err)
	response.JSON(w, he.Status, response.AccountResult{
		Success: false,
		Message: he.Message,
		Error:   he.Message,
		Code:    he.Code,
	})
}
