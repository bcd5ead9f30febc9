package proposals

import (
	propsvc "canopy-backend/internal/application/proposals"
	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"
	"canopy-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for proposal endpoints.
type Handlers struct {
	Service *propsvc.Service
}

// Propose POST /api/v1/proposals/propose
func (h *Handlers) Propose(c *fiber.Ctx) error {
	var body struct {
		EmitterID  string   `json:"emitter_id"`
		ProjectIDs []string `json:"project_ids"`
		TTL        int64    `json:"ttl"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.EmitterID == "" || len(body.ProjectIDs) == 0 || body.TTL == 0 {
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

	proposal, err := h.Service.Propose(c.Context(), body.EmitterID, body.ProjectIDs, body.TTL, actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.SuccessCreated(c, "Match proposed", fiber.Map{"proposal": proposal}, nil)
}

// Approve POST /api/v1/proposals/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
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

	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	record, err := h.Service.Approve(c.Context(), body.EmitterID, body.Metadata, actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.SuccessCreated(c, "Proposal approved", fiber.Map{"match": record}, nil)
}

// GetProposal GET /api/v1/proposals/proposal/:emitter_id
func (h *Handlers) GetProposal(c *fiber.Ctx) error {
	emitterID := c.Params("emitter_id")
	if emitterID == "" {
		return response.Error(c, "Missing emitter_id", fiber.StatusBadRequest, nil)
	}
	proposal, err := h.Service.Get(c.Context(), emitterID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Proposal found", fiber.Map{"proposal": proposal}, nil)
}

// PurgeExpired POST /api/v1/proposals/purge-expired
func (h *Handlers) PurgeExpired(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	purged, err := h.Service.PurgeExpired(c.Context(), actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Expired proposals purged", fiber.Map{"purged": purged}, nil)
}
