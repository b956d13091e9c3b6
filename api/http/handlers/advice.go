package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/finadvice/api/http/presenter"
	"github.com/artem13815/finadvice/pkg/advice"
)

// Fixed messages of the advice endpoint.
const (
	msgModelUnavailable = "Model is not available."
	msgQueryMissing     = "Query not provided."
	msgGenerationFailed = "Failed to generate response."
)

type AdviceHandler struct {
	uc advice.UseCase
}

func NewAdviceHandler(uc advice.UseCase) *AdviceHandler { return &AdviceHandler{uc: uc} }

// adviceRequest documents the body; parsing goes through advice.ParseRequest.
type adviceRequest struct {
	Query    string          `json:"query" example:"What should I do with my savings?"`
	UserData *adviceUserData `json:"userData,omitempty"`
}

type adviceUserData struct {
	MonthlyIncome any    `json:"monthly_income,omitempty" swaggertype:"number" example:"5000"`
	TotalExpenses any    `json:"total_expenses,omitempty" swaggertype:"number" example:"3000"`
	Savings       any    `json:"savings,omitempty" swaggertype:"number" example:"2000"`
	Currency      string `json:"currency,omitempty" example:"USD"`
}

type AdviceResponse struct {
	Response string `json:"response"`
}

// Advise returns model advice for a query and optional financial context.
// @Summary Financial advice
// @Tags    advice
// @Accept  json
// @Produce json
// @Param   input body adviceRequest true "query and optional userData"
// @Success 200 {object} AdviceResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /financial-advice [post]
func (h *AdviceHandler) Advise(c *fiber.Ctx) error {
	if !h.uc.Available() {
		return presenter.Error(c, http.StatusInternalServerError, msgModelUnavailable)
	}
	req, err := advice.ParseRequest(c.Body())
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgQueryMissing)
	}

	res, err := h.uc.Advise(c.UserContext(), req)
	switch {
	case err == nil:
		return presenter.JSON(c, http.StatusOK, AdviceResponse{Response: res.Response})
	case errors.Is(err, advice.ErrModelUnavailable):
		return presenter.Error(c, http.StatusInternalServerError, msgModelUnavailable)
	case errors.Is(err, advice.ErrBadRequest):
		return presenter.Error(c, http.StatusBadRequest, msgQueryMissing)
	default:
		return presenter.Error(c, http.StatusInternalServerError, msgGenerationFailed)
	}
}
