package preferences

import (
	prefsvc "canopy-backend/internal/application/preferences"
	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"
	"canopy-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for preference endpoints.
type Handlers struct {
	Service *prefsvc.Service
}

// Set PUT /api/v1/preferences/set
func (h *Handlers) Set(c *fiber.Ctx) error {
	var body struct {
		ProjectIDs           []string `json:"project_ids"`
		MinCreditsPerProject int64    `json:"min_credits_per_project"`
		MaxFee               int64    `json:"max_fee"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if len(body.ProjectIDs) == 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !validation.AllValidProjectIDs(body.ProjectIDs) {
		return response.Error(c, "Invalid project_ids format", fiber.StatusBadRequest, nil)
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	pref, err := h.Service.Set(c.Context(), actor.UserID, body.ProjectIDs, body.MinCreditsPerProject, body.MaxFee)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Preference saved", fiber.Map{"preference": pref}, nil)
}

// View GET /api/v1/preferences/view
func (h *Handlers) View(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	pref, err := h.Service.Get(c.Context(), actor.UserID)
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Preference found", fiber.Map{"preference": pref}, nil)
}
