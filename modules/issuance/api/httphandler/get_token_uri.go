package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

type getTokenURIRequest struct {
	TokenID string `params:"tokenId"`
}

func (r getTokenURIRequest) Validate() error {
	var errList []error
	if _, err := parseTokenID("tokenId", r.TokenID); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getTokenURIResult struct {
	TokenID string `json:"tokenId"`
	URI     string `json:"uri"`
}

type getTokenURIResponse = common.HttpResponse[getTokenURIResult]

func (h *HttpHandler) GetTokenURI(ctx *fiber.Ctx) (err error) {
	var req getTokenURIRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	tokenID, _ := parseTokenID("tokenId", req.TokenID)

	uri, err := h.usecase.ResolveURI(ctx.UserContext(), tokenID)
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := getTokenURIResponse{
		Result: &getTokenURIResult{
			TokenID: tokenID.Dec(),
			URI:     uri,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
