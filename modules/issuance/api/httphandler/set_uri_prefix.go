package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

type setURIPrefixRequest struct {
	Caller string `json:"caller"`
	Prefix string `json:"prefix"`
}

func (r setURIPrefixRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("caller", r.Caller); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type setURIPrefixResult struct {
	Prefix string `json:"prefix"`
}

type setURIPrefixResponse = common.HttpResponse[setURIPrefixResult]

func (h *HttpHandler) SetURIPrefix(ctx *fiber.Ctx) (err error) {
	var req setURIPrefixRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress("caller", req.Caller)

	if err := h.usecase.SetBaseURIPrefix(ctx.UserContext(), caller, req.Prefix); err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := setURIPrefixResponse{
		Result: &setURIPrefixResult{Prefix: req.Prefix},
	}
	return errors.WithStack(ctx.JSON(resp))
}
