package handlers

import (
	"context"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/app/middleware"
	businessflow "github.com/gun9212/idealmatch-backend/business_flow"
	"github.com/gun9212/idealmatch-backend/utils"
)

type ProfileHandlerInterface interface {
	GetProfile(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
	UpdatePreferences(c fiber.Ctx) error
	UpdateLocation(c fiber.Ctx) error
	UpdateConsent(c fiber.Ctx) error
}

// ProfileHandler serves profile, preference, location and consent endpoints.
type ProfileHandler struct {
	flow      businessflow.ProfileFlow
	validator *validator.Validate
}

func NewProfileHandler(flow businessflow.ProfileFlow) ProfileHandlerInterface {
	return &ProfileHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ProfileHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *ProfileHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// GetProfile returns a profile with its preferences and current location.
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	profileID, err := paramProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile ID", "INVALID_PROFILE_ID", nil)
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id")
	res, err := h.flow.GetProfile(ctx, profileID)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		log.Println("Get profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve profile", "GET_PROFILE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", res)
}

// UpdateProfile applies the provided attribute changes.
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	profileID, err := paramProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile ID", "INVALID_PROFILE_ID", nil)
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateProfile(ctx, profileID, &req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsProfileUpdateEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "PROFILE_UPDATE_EMPTY", nil)
		}
		log.Println("Update profile failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update profile", "UPDATE_PROFILE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile updated", res)
}

// UpdatePreferences replaces the profile's ideal-type conditions.
func (h *ProfileHandler) UpdatePreferences(c fiber.Ctx) error {
	profileID, err := paramProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile ID", "INVALID_PROFILE_ID", nil)
	}

	var req dto.UpdatePreferencesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id/preferences")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdatePreferences(ctx, profileID, &req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsPersonalitySetEmpty(err) || businessflow.IsInterestsSetEmpty(err) ||
			businessflow.IsAgeRangeInverted(err) || businessflow.IsHeightRangeInverted(err) ||
			businessflow.IsInvalidPriority(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PREFERENCES", nil)
		}
		log.Println("Update preferences failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update preferences", "UPDATE_PREFERENCES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Preferences updated", res)
}

// UpdateLocation overwrites the profile's current coordinate.
func (h *ProfileHandler) UpdateLocation(c fiber.Ctx) error {
	profileID, err := paramProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile ID", "INVALID_PROFILE_ID", nil)
	}

	var req dto.UpdateLocationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id/location")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateLocation(ctx, profileID, &req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsLocationOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Coordinates are out of range", "LOCATION_OUT_OF_RANGE", nil)
		}
		log.Println("Update location failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update location", "UPDATE_LOCATION_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Location updated", res)
}

// UpdateConsent flips matching consent and reports the lifecycle side
// effects.
func (h *ProfileHandler) UpdateConsent(c fiber.Ctx) error {
	profileID, err := paramProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile ID", "INVALID_PROFILE_ID", nil)
	}

	var req dto.UpdateConsentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id/consent")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateMatchingConsent(ctx, profileID, &req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		log.Println("Update consent failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update consent", "UPDATE_CONSENT_FAILED", nil)
	}
	middleware.RecordMatchesCreated(res.MatchesCreated)
	middleware.RecordMatchesRemoved(int(res.MatchesRemoved))
	return h.SuccessResponse(c, fiber.StatusOK, "Consent updated", res)
}

func (h *ProfileHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}

func paramProfileID(c fiber.Ctx) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || parsed == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(parsed), nil
}
