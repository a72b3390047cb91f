package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/capability"
)

type getCapabilityRequest struct {
	CapabilityID string `params:"capabilityId"`
}

func (r getCapabilityRequest) Validate() error {
	var errList []error
	if _, err := capability.Parse(r.CapabilityID); err != nil {
		errList = append(errList, errors.Errorf("'%s' is not a valid capability id", r.CapabilityID))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getCapabilityResult struct {
	CapabilityID string `json:"capabilityId"`
	Supported    bool   `json:"supported"`
}

type getCapabilityResponse = common.HttpResponse[getCapabilityResult]

func (h *HttpHandler) GetCapability(ctx *fiber.Ctx) (err error) {
	var req getCapabilityRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	id, _ := capability.Parse(req.CapabilityID)

	resp := getCapabilityResponse{
		Result: &getCapabilityResult{
			CapabilityID: id.String(),
			Supported:    h.usecase.SupportsCapability(id),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
