package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/app/middleware"
	businessflow "github.com/gun9212/idealmatch-backend/business_flow"
	"github.com/gun9212/idealmatch-backend/utils"
)

type MatchingHandlerInterface interface {
	MatchableCount(c fiber.Ctx) error
	FindCandidates(c fiber.Ctx) error
	Check(c fiber.Ctx) error
	NewMatches(c fiber.Ctx) error
	ListMatches(c fiber.Ctx) error
}

// MatchingHandler serves the candidate discovery and match lifecycle
// endpoints.
type MatchingHandler struct {
	candidateFlow businessflow.CandidateFlow
	matchFlow     businessflow.MatchFlow
	validator     *validator.Validate
}

func NewMatchingHandler(candidateFlow businessflow.CandidateFlow, matchFlow businessflow.MatchFlow) MatchingHandlerInterface {
	return &MatchingHandler{
		candidateFlow: candidateFlow,
		matchFlow:     matchFlow,
		validator:     validator.New(),
	}
}

func (h *MatchingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *MatchingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// MatchableCount returns how many matchable profiles are currently within
// the radius of the supplied coordinate.
func (h *MatchingHandler) MatchableCount(c fiber.Ctx) error {
	profileID, err := queryProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile_id", "INVALID_PROFILE_ID", nil)
	}

	req, err := parseMatchableCountQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/matching/matchable-count")
	res, err := h.candidateFlow.MatchableCount(ctx, profileID, req)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsProfileInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Profile service is inactive", "PROFILE_INACTIVE", nil)
		}
		if businessflow.IsMatchingConsentOff(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Matching consent is disabled", "MATCHING_CONSENT_OFF", nil)
		}
		if businessflow.IsInvalidRadius(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Radius must be positive", "INVALID_RADIUS", nil)
		}
		log.Println("Matchable count failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve matchable count", "MATCHABLE_COUNT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Matchable count retrieved", res)
}

// FindCandidates lists scored candidates around a coordinate for the
// requesting profile.
func (h *MatchingHandler) FindCandidates(c fiber.Ctx) error {
	profileID, err := queryProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile_id", "INVALID_PROFILE_ID", nil)
	}

	req, err := parseCandidateQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/matching/candidates")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.candidateFlow.FindCandidates(ctx, profileID, req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsProfileInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Profile service is inactive", "PROFILE_INACTIVE", nil)
		}
		if businessflow.IsInvalidRadius(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Radius must be positive", "INVALID_RADIUS", nil)
		}
		log.Println("Find candidates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to find candidates", "FIND_CANDIDATES_FAILED", nil)
	}
	middleware.RecordCandidateScan()
	return h.SuccessResponse(c, fiber.StatusOK, "Candidates retrieved", res)
}

// Check runs a reconcile pass for the profile at the supplied coordinate:
// matches are created for in-range compatible candidates and removed for
// drifted pairs.
func (h *MatchingHandler) Check(c fiber.Ctx) error {
	var req dto.ReconcileRequest
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

	ctx := h.createRequestContext(c, "/api/v1/matching/check")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.matchFlow.ReconcileMatches(ctx, req.ProfileID, &req, metadata)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsProfileInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Profile service is inactive", "PROFILE_INACTIVE", nil)
		}
		if businessflow.IsMatchingConsentOff(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Matching consent is disabled", "MATCHING_CONSENT_OFF", nil)
		}
		if businessflow.IsInvalidRadius(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Radius must be positive", "INVALID_RADIUS", nil)
		}
		log.Println("Reconcile matches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reconcile matches", "RECONCILE_FAILED", nil)
	}
	middleware.RecordCandidateScan()
	middleware.RecordMatchesCreated(len(res.Created))
	middleware.RecordMatchesRemoved(len(res.Removed))
	return h.SuccessResponse(c, fiber.StatusOK, "Matches reconciled", res)
}

// NewMatches reports matches created after the since timestamp.
func (h *MatchingHandler) NewMatches(c fiber.Ctx) error {
	profileID, err := queryProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile_id", "INVALID_PROFILE_ID", nil)
	}

	since := utils.UTCNowAdd(-24 * time.Hour)
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, perr := time.Parse(time.RFC3339, sinceStr)
		if perr != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "since must be RFC3339", "INVALID_SINCE", nil)
		}
		since = parsed.UTC()
	}

	ctx := h.createRequestContext(c, "/api/v1/matching/new")
	res, err := h.matchFlow.CheckNewMatches(ctx, profileID, since)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		log.Println("Check new matches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check new matches", "CHECK_NEW_MATCHES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "New matches checked", res)
}

// ListMatches returns every current match of a profile.
func (h *MatchingHandler) ListMatches(c fiber.Ctx) error {
	profileID, err := queryProfileID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile_id", "INVALID_PROFILE_ID", nil)
	}

	ctx := h.createRequestContext(c, "/api/v1/matching/matches")
	res, err := h.matchFlow.ListMatches(ctx, profileID)
	if err != nil {
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		log.Println("List matches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list matches", "LIST_MATCHES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Matches retrieved", res)
}

func (h *MatchingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}

func queryProfileID(c fiber.Ctx) (uint, error) {
	parsed, err := strconv.ParseUint(c.Query("profile_id"), 10, 32)
	if err != nil || parsed == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(parsed), nil
}

func parseMatchableCountQuery(c fiber.Ctx) (*dto.MatchableCountRequest, error) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return nil, err
	}

	req := &dto.MatchableCountRequest{Latitude: lat, Longitude: lon}
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return nil, err
		}
		req.RadiusKm = &radius
	}
	return req, nil
}

func parseCandidateQuery(c fiber.Ctx) (*dto.FindCandidatesRequest, error) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return nil, err
	}

	req := &dto.FindCandidatesRequest{Latitude: lat, Longitude: lon}
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return nil, err
		}
		req.RadiusKm = &radius
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}
		req.Limit = &limit
	}
	return req, nil
}
