package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
)

const getEventsMaxLimit = 1000

type getEventsRequest struct {
	FromSequence uint64 `query:"fromSequence"`
	Limit        int32  `query:"limit"`
}

func (r getEventsRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getEventsMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getEventsMaxLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getEventsResult struct {
	List []eventResult `json:"list"`
}

type getEventsResponse = common.HttpResponse[getEventsResult]

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) (err error) {
	var req getEventsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	events, err := h.usecase.ListEvents(ctx.UserContext(), req.FromSequence, req.Limit)
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := getEventsResponse{
		Result: &getEventsResult{
			List: eventResultsFromEntities(events),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
