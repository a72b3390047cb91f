package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
)

type getAuthorityResult struct {
	Address       string    `json:"address"`
	Creator       string    `json:"creator"`
	BaseURIPrefix string    `json:"baseUriPrefix"`
	NextTokenID   string    `json:"nextTokenId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type getAuthorityResponse = common.HttpResponse[getAuthorityResult]

func (h *HttpHandler) GetAuthority(ctx *fiber.Ctx) (err error) {
	authority, err := h.usecase.GetAuthority(ctx.UserContext())
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := getAuthorityResponse{
		Result: &getAuthorityResult{
			Address:       authority.Address.Hex(),
			Creator:       authority.Creator.Hex(),
			BaseURIPrefix: authority.BaseURIPrefix,
			NextTokenID:   authority.NextTokenID.Dec(),
			CreatedAt:     authority.CreatedAt,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
