package handler

import (
	"strings"

	"xrpl-wallet/internal/adapter/http/dto"
	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/pkg/apperror"
	"xrpl-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderIdempotencyKey lets clients retry POST /api/v1/payments safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// WalletHandler serves the configured wallet: identity, balance and payments.
type WalletHandler struct {
	wallet     *domain.WalletIdentity
	balanceSvc ports.BalanceService
	paymentSvc ports.PaymentService
	log        zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	wallet *domain.WalletIdentity,
	balanceSvc ports.BalanceService,
	paymentSvc ports.PaymentService,
	log zerolog.Logger,
) *WalletHandler {
	return &WalletHandler{
		wallet:     wallet,
		balanceSvc: balanceSvc,
		paymentSvc: paymentSvc,
		log:        log,
	}
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	response.OK(c, dto.ToWalletResponse(h.wallet))
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	snapshot, err := h.balanceSvc.GetBalance(c.Request.Context(), h.wallet.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToBalanceResponse(snapshot))
}

// SendPayment handles POST /api/v1/payments. It blocks until the payment
// reaches a final result or the confirmation wait runs out.
func (h *WalletHandler) SendPayment(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(bindingMessage(err)))
		return
	}
	dto.SanitizeStruct(&req)

	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if key != "" && !dto.IsSafeID(key) {
		response.Error(c, apperror.Validation("Idempotency-Key must be 1-100 characters of [A-Za-z0-9_.-]"))
		return
	}

	amount, err := domain.ParseXRP(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount(err.Error()))
		return
	}

	outcome, err := h.paymentSvc.Submit(c.Request.Context(), h.wallet, req.Destination, amount, ports.PaymentOptions{
		DestinationTag: req.DestinationTag,
		SourceTag:      req.SourceTag,
		IdempotencyKey: key,
	})
	if err != nil {
		res := domain.ResultOf(nil, err)
		h.log.Warn().Err(err).
			Str("destination", req.Destination).
			Str("result", string(res.Kind)).
			Str("hash", res.Hash).
			Msg("payment failed")
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentResponse(outcome))
}

// bindingMessage keeps validation errors short and free of Go type names.
func bindingMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "'xrpl_address'"):
		return "destination must be a classic XRPL address"
	case strings.Contains(msg, "'xrp_amount'"):
		return "amount must be a positive XRP value with at most 6 decimal places"
	case strings.Contains(msg, "'required'"):
		return "destination and amount are required"
	case strings.Contains(msg, "http: request body too large"):
		return "request body too large"
	}
	return "malformed request body"
}
