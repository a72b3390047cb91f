package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Post("/mint-requests", h.CreateMintRequest)
	r.Post("/issuances", h.IssueSingle)
	r.Post("/issuances/batch", h.IssueBatch)
	r.Post("/roles/minter/grant", h.GrantMinter)
	r.Post("/roles/minter/revoke", h.RevokeMinter)
	r.Get("/roles/:role", h.GetRoleMembers)
	r.Get("/roles/:role/:principal", h.HasRole)
	r.Put("/uri-prefix", h.SetURIPrefix)
	r.Get("/tokens/:tokenId/uri", h.GetTokenURI)
	r.Get("/balances/:owner", h.GetBalances)
	r.Get("/approvals/:owner/:operator", h.GetOperatorApproval)
	r.Get("/capabilities/:capabilityId", h.GetCapability)
	r.Get("/events", h.GetEvents)
	r.Get("/authority", h.GetAuthority)
	return nil
}
