package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

type getOperatorApprovalRequest struct {
	Owner    string `params:"owner"`
	Operator string `params:"operator"`
}

func (r getOperatorApprovalRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("owner", r.Owner); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseAddress("operator", r.Operator); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getOperatorApprovalResult struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type getOperatorApprovalResponse = common.HttpResponse[getOperatorApprovalResult]

func (h *HttpHandler) GetOperatorApproval(ctx *fiber.Ctx) (err error) {
	var req getOperatorApprovalRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	owner, _ := parseAddress("owner", req.Owner)
	operator, _ := parseAddress("operator", req.Operator)

	approved, err := h.usecase.IsApprovedForAll(ctx.UserContext(), owner, operator)
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := getOperatorApprovalResponse{
		Result: &getOperatorApprovalResult{
			Owner:    owner.Hex(),
			Operator: operator.Hex(),
			Approved: approved,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
