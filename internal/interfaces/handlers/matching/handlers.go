package matching

import (
	matchsvc "canopy-backend/internal/application/matching"
	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"
	"canopy-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for matching endpoints.
type Handlers struct {
	Service *matchsvc.Service
}

// AutoMatch POST /api/v1/matching/auto-match
func (h *Handlers) AutoMatch(c *fiber.Ctx) error {
	var body struct {
		EmitterID string `json:"emitter_id"`
		Metadata  string `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.EmitterID == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidEmitterID(body.EmitterID) {
		return response.Error(c, "Invalid emitter_id format", fiber.StatusBadRequest, nil)
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	record, err := h.Service.AutoMatch(c.Context(), body.EmitterID, body.Metadata, actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.SuccessCreated(c, "Match created", fiber.Map{"match": record}, nil)
}

// ManualMatch POST /api/v1/matching/manual-match
func (h *Handlers) ManualMatch(c *fiber.Ctx) error {
	var body struct {
		EmitterID  string   `json:"emitter_id"`
		ProjectIDs []string `json:"project_ids"`
		Metadata   string   `json:"metadata"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.EmitterID == "" || len(body.ProjectIDs) == 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !validation.IsValidEmitterID(body.EmitterID) {
		return response.Error(c, "Invalid emitter_id format", fiber.StatusBadRequest, nil)
	}
	if !validation.AllValidProjectIDs(body.ProjectIDs) {
		return response.Error(c, "Invalid project_ids format", fiber.StatusBadRequest, nil)
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	record, err := h.Service.ManualMatch(c.Context(), body.EmitterID, body.ProjectIDs, body.Metadata, actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.SuccessCreated(c, "Match created", fiber.Map{"match": record}, nil)
}

// Retire POST /api/v1/matching/retire
func (h *Handlers) Retire(c *fiber.Ctx) error {
	var body struct {
		EmitterID string `json:"emitter_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.EmitterID == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	record, err := h.Service.Retire(c.Context(), body.EmitterID, actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Match retired", fiber.Map{"match": record}, nil)
}

// GetMatch GET /api/v1/matching/match/:emitter_id — read accessor, works
// while the system is paused.
func (h *Handlers) GetMatch(c *fiber.Ctx) error {
	emitterID := c.Params("emitter_id")
	if emitterID == "" {
		return response.Error(c, "Missing emitter_id", fiber.StatusBadRequest, nil)
	}
	record, err := h.Service.GetMatch(c.Context(), emitterID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Match found", fiber.Map{"match": record}, nil)
}

// GetHistory GET /api/v1/matching/history/:emitter_id
func (h *Handlers) GetHistory(c *fiber.Ctx) error {
	emitterID := c.Params("emitter_id")
	if emitterID == "" {
		return response.Error(c, "Missing emitter_id", fiber.StatusBadRequest, nil)
	}
	entries, err := h.Service.History(c.Context(), emitterID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Match history", fiber.Map{"entries": entries}, nil)
}

// GetStats GET /api/v1/matching/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	stats, err := h.Service.GetStats(c.Context())
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Matching stats", fiber.Map{"stats": stats}, nil)
}
