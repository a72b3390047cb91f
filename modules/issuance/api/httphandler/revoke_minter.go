package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

type revokeMinterRequest struct {
	Caller    string `json:"caller"`
	Principal string `json:"principal"`
}

func (r revokeMinterRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("caller", r.Caller); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseAddress("principal", r.Principal); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type revokeMinterResult struct {
	Revoked bool `json:"revoked"`
}

type revokeMinterResponse = common.HttpResponse[revokeMinterResult]

func (h *HttpHandler) RevokeMinter(ctx *fiber.Ctx) (err error) {
	var req revokeMinterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress("caller", req.Caller)
	principal, _ := parseAddress("principal", req.Principal)

	if err := h.usecase.RevokeMinter(ctx.UserContext(), caller, principal); err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := revokeMinterResponse{
		Result: &revokeMinterResult{Revoked: true},
	}
	return errors.WithStack(ctx.JSON(resp))
}
