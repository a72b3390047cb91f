package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
)

type issueSingleRequest struct {
	Caller    string `json:"caller"`
	Receiver  string `json:"receiver"`
	Claimable bool   `json:"claimable"`
	Quantity  string `json:"quantity"`
	URI       string `json:"uri"`
}

func (r issueSingleRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("caller", r.Caller); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseAddress("receiver", r.Receiver); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseQuantity("quantity", r.Quantity); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type issueSingleResult struct {
	TokenID string        `json:"tokenId"`
	Events  []eventResult `json:"events"`
}

type issueSingleResponse = common.HttpResponse[issueSingleResult]

func (h *HttpHandler) IssueSingle(ctx *fiber.Ctx) (err error) {
	var req issueSingleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress("caller", req.Caller)
	receiver, _ := parseAddress("receiver", req.Receiver)
	quantity, _ := parseQuantity("quantity", req.Quantity)

	result, err := h.usecase.IssueSingle(ctx.UserContext(), usecase.IssueSingleParams{
		Caller:    caller,
		Receiver:  receiver,
		Claimable: req.Claimable,
		Quantity:  quantity,
		URI:       req.URI,
	})
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := issueSingleResponse{
		Result: &issueSingleResult{
			TokenID: result.TokenID.Dec(),
			Events:  eventResultsFromEntities(result.Events),
		},
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(resp))
}
