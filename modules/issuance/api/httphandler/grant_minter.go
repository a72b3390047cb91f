package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

type grantMinterRequest struct {
	Caller    string `json:"caller"`
	Principal string `json:"principal"`
}

func (r grantMinterRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("caller", r.Caller); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseAddress("principal", r.Principal); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type grantMinterResult struct {
	Granted bool `json:"granted"`
}

type grantMinterResponse = common.HttpResponse[grantMinterResult]

func (h *HttpHandler) GrantMinter(ctx *fiber.Ctx) (err error) {
	var req grantMinterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress("caller", req.Caller)
	principal, _ := parseAddress("principal", req.Principal)

	if err := h.usecase.GrantMinter(ctx.UserContext(), caller, principal); err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := grantMinterResponse{
		Result: &grantMinterResult{Granted: true},
	}
	return errors.WithStack(ctx.JSON(resp))
}
