package handlers

import (
	"errors"
	"strconv"

	"github.com/findmyphone/backend/internal/auth"
	"github.com/findmyphone/backend/internal/dto"
	"github.com/findmyphone/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PhoneHandler struct {
	phoneService *services.PhoneService
}

func NewPhoneHandler(phoneService *services.PhoneService) *PhoneHandler {
	return &PhoneHandler{phoneService: phoneService}
}

func (h *PhoneHandler) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreatePhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	phone, err := h.phoneService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrIMEITaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Phone reported successfully",
		"phone":   phone,
	})
}

func (h *PhoneHandler) List(c *fiber.Ctx) error {
	filter := dto.PhoneFilter{
		Kind:   c.Query("kind", ""),
		Brand:  c.Query("brand", ""),
		Status: c.Query("status", ""),
		Search: c.Query("search", ""),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit", "20"))
	filter.Radius, _ = strconv.ParseFloat(c.Query("radius", "10"), 64)

	if latStr := c.Query("lat"); latStr != "" {
		if lat, err := strconv.ParseFloat(latStr, 64); err == nil {
			filter.Lat = &lat
		}
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		if lng, err := strconv.ParseFloat(lngStr, 64); err == nil {
			filter.Lng = &lng
		}
	}

	resp, err := h.phoneService.List(&filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch phone reports",
		})
	}

	return c.JSON(resp)
}

func (h *PhoneHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid phone ID",
		})
	}

	phone, err := h.phoneService.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Phone not found",
		})
	}

	return c.JSON(phone)
}

func (h *PhoneHandler) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid phone ID",
		})
	}

	var req dto.UpdatePhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	phone, err := h.phoneService.Update(id, userID, &req)
	if err != nil {
		return h.mapPhoneError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Phone updated successfully",
		"phone":   phone,
	})
}

func (h *PhoneHandler) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid phone ID",
		})
	}

	if err := h.phoneService.Delete(id, userID); err != nil {
		if errors.Is(err, services.ErrPhoneInPendingMatch) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return h.mapPhoneError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Phone report deleted successfully"})
}

func (h *PhoneHandler) mapPhoneError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPhoneNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Phone not found",
		})
	case errors.Is(err, services.ErrNotReportOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Access denied",
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
}
