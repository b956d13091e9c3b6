package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/finadvice/api/http/presenter"
	"github.com/artem13815/finadvice/pkg/history"
	"github.com/artem13815/finadvice/pkg/logging"
)

type HistoryHandler struct {
	uc history.UseCase
}

func NewHistoryHandler(uc history.UseCase) *HistoryHandler { return &HistoryHandler{uc: uc} }

// List returns recorded advice exchanges, newest first.
// @Summary List advice history
// @Tags    history
// @Produce json
// @Param   limit  query int false "page size (1..200)"
// @Param   offset query int false "offset"
// @Security BearerAuth
// @Success 200 {array} history.Record
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /advice-history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, history.DefaultLimit, history.MaxLimit)
	items, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		logging.GetLogger().WithError(err).Error("list advice history")
		return presenter.Error(c, http.StatusInternalServerError, "failed to list history")
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns one recorded exchange.
// @Summary Get advice history record
// @Tags    history
// @Produce json
// @Param   id path string true "record id (UUID)"
// @Security BearerAuth
// @Success 200 {object} history.Record
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /advice-history/{id} [get]
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	rec, err := h.uc.Get(c.UserContext(), id)
	if errors.Is(err, history.ErrNotFound) {
		return presenter.Error(c, http.StatusNotFound, "record not found")
	}
	if err != nil {
		logging.GetLogger().WithError(err).Error("get advice history")
		return presenter.Error(c, http.StatusInternalServerError, "failed to read history")
	}
	return presenter.JSON(c, http.StatusOK, rec)
}
