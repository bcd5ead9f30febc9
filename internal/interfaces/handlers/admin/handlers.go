package admin

import (
	adminsvc "canopy-backend/internal/application/admin"
	"canopy-backend/internal/collaborators"
	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for admin endpoints.
type Handlers struct {
	Service *adminsvc.Service
}

// Pause POST /api/v1/admin/pause
func (h *Handlers) Pause(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Pause(c.Context(), actor.UserID); err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Matching paused", nil, nil)
}

// Unpause POST /api/v1/admin/unpause
func (h *Handlers) Unpause(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Unpause(c.Context(), actor.UserID); err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Matching unpaused", nil, nil)
}

// SetFee POST /api/v1/admin/set-fee
func (h *Handlers) SetFee(c *fiber.Ctx) error {
	var body struct {
		Fee *int64 `json:"fee"`
	}
	if err := c.BodyParser(&body); err != nil || body.Fee == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.SetFee(c.Context(), actor.UserID, *body.Fee); err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Match fee updated", fiber.Map{"fee": *body.Fee}, nil)
}

// SetThreshold POST /api/v1/admin/set-threshold
func (h *Handlers) SetThreshold(c *fiber.Ctx) error {
	var body struct {
		Threshold *int64 `json:"threshold"`
	}
	if err := c.BodyParser(&body); err != nil || body.Threshold == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.SetThreshold(c.Context(), actor.UserID, *body.Threshold); err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Auto-match threshold updated", fiber.Map{"threshold": *body.Threshold}, nil)
}

// UpdateCollaborators POST /api/v1/admin/update-collaborators
func (h *Handlers) UpdateCollaborators(c *fiber.Ctx) error {
	var body struct {
		EmissionSourceURL string `json:"emission_source_url"`
		CreditLedgerURL   string `json:"credit_ledger_url"`
		TokenIssuerURL    string `json:"token_issuer_url"`
		AuthzURL          string `json:"authz_url"`
		CalculatorURL     string `json:"calculator_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	err := h.Service.UpdateCollaborators(c.Context(), actor.UserID, collaborators.Endpoints{
		EmissionSource: body.EmissionSourceURL,
		CreditLedger:   body.CreditLedgerURL,
		TokenIssuer:    body.TokenIssuerURL,
		Authorization:  body.AuthzURL,
		Calculator:     body.CalculatorURL,
	})
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "Collaborator references updated", nil, nil)
}

// Settings GET /api/v1/admin/settings — read accessor.
func (h *Handlers) Settings(c *fiber.Ctx) error {
	settings, err := h.Service.Settings(c.Context())
	if err != nil {
		return response.EngineError(c, err)
	}
	return response.Success(c, "System settings", fiber.Map{"settings": settings}, nil)
}
