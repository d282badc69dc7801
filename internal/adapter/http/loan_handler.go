package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loan-manager-backend/internal/adapter/middleware"
	"loan-manager-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	BorrowerID     string `json:"borrower_id" validate:"required,hex32"`
	CollateralID   uint64 `json:"collateral_id" validate:"required"`
	AmountMinor    int64  `json:"amount_minor" validate:"required,gt=0"`
	DurationMonths int64  `json:"duration_months" validate:"required,gt=0"`
}

type payReq struct {
	AmountMinor int64 `json:"amount_minor" validate:"required,gt=0"`
}

type remittanceReq struct {
	AmountMinor int64 `json:"amount_minor" validate:"required,gt=0"`
}

// RequestLoan creates a pending loan. The authenticated caller must be the
// borrower it names.
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if middleware.CallerID(c) != req.BorrowerID {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "caller does not match borrower"})
	}

	dto, err := h.uc.Request(c.Request().Context(), loan.RequestLoanInput{
		BorrowerID:     req.BorrowerID,
		CollateralID:   req.CollateralID,
		AmountMinor:    req.AmountMinor,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	dto, err := h.uc.Approve(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MakePayment(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	dto, err := h.uc.Pay(c.Request().Context(), id, req.AmountMinor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ProcessRemittance is the oracle feed: apply up to one installment of the
// reported remittance and report the residual for the recipient.
func (h *LoanHandler) ProcessRemittance(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req remittanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	dto, err := h.uc.ProcessAutomaticPayment(c.Request().Context(), middleware.CallerID(c), id, req.AmountMinor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// MarkMissed is the oracle's missed-payment report.
func (h *LoanHandler) MarkMissed(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	dto, err := h.uc.MarkMissed(c.Request().Context(), middleware.CallerID(c), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListBorrowerLoans(c echo.Context) error {
	borrowerID := c.Param("borrower_id")
	if !reHex32.MatchString(borrowerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid borrower_id"})
	}
	out, err := h.uc.ListByBorrower(c.Request().Context(), borrowerID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
