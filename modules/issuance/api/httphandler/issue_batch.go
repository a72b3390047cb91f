package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const issueBatchMaxSize = 1000

type issueBatchRequest struct {
	Caller     string   `json:"caller"`
	Receiver   string   `json:"receiver"`
	Claimable  bool     `json:"claimable"`
	Quantities []string `json:"quantities"`
	Prices     []string `json:"prices"`
	URIs       []string `json:"uris"`
}

func (r issueBatchRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("caller", r.Caller); err != nil {
		errList = append(errList, err)
	}
	if _, err := parseAddress("receiver", r.Receiver); err != nil {
		errList = append(errList, err)
	}
	if len(r.Quantities) > issueBatchMaxSize {
		errList = append(errList, errors.Errorf("batch size cannot exceed %d", issueBatchMaxSize))
	}
	for i, quantity := range r.Quantities {
		if _, err := uint256.FromDecimal(quantity); err != nil {
			errList = append(errList, errors.Errorf("'quantities[%d]' is not a valid quantity", i))
		}
	}
	for i, price := range r.Prices {
		if _, err := decimal.NewFromString(price); err != nil {
			errList = append(errList, errors.Errorf("'prices[%d]' is not a valid decimal", i))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type issueBatchResult struct {
	TokenIDs []string      `json:"tokenIds"`
	Events   []eventResult `json:"events"`
}

type issueBatchResponse = common.HttpResponse[issueBatchResult]

func (h *HttpHandler) IssueBatch(ctx *fiber.Ctx) (err error) {
	var req issueBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress("caller", req.Caller)
	receiver, _ := parseAddress("receiver", req.Receiver)
	quantities := lo.Map(req.Quantities, func(quantity string, _ int) *uint256.Int {
		return lo.Must(uint256.FromDecimal(quantity))
	})
	prices := lo.Map(req.Prices, func(price string, _ int) decimal.Decimal {
		return lo.Must(decimal.NewFromString(price))
	})

	result, err := h.usecase.IssueBatch(ctx.UserContext(), usecase.IssueBatchParams{
		Caller:     caller,
		Receiver:   receiver,
		Claimable:  req.Claimable,
		Quantities: quantities,
		Prices:     prices,
		URIs:       req.URIs,
	})
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := issueBatchResponse{
		Result: &issueBatchResult{
			TokenIDs: lo.Map(result.TokenIDs, func(tokenID *uint256.Int, _ int) string {
				return tokenID.Dec()
			}),
			Events: eventResultsFromEntities(result.Events),
		},
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(resp))
}
