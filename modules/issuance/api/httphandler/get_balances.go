package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/samber/lo"
)

type getBalancesRequest struct {
	Owner   string `params:"owner"`
	TokenID string `query:"tokenId"`
}

func (r getBalancesRequest) Validate() error {
	var errList []error
	if _, err := parseAddress("owner", r.Owner); err != nil {
		errList = append(errList, err)
	}
	if r.TokenID != "" {
		if _, err := parseTokenID("tokenId", r.TokenID); err != nil {
			errList = append(errList, err)
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type balanceEntry struct {
	TokenID string `json:"tokenId"`
	Amount  string `json:"amount"`
}

type getBalancesResult struct {
	Owner string         `json:"owner"`
	List  []balanceEntry `json:"list"`
}

type getBalancesResponse = common.HttpResponse[getBalancesResult]

func (h *HttpHandler) GetBalances(ctx *fiber.Ctx) (err error) {
	var req getBalancesRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	owner, _ := parseAddress("owner", req.Owner)

	var list []balanceEntry
	if req.TokenID != "" {
		tokenID, _ := parseTokenID("tokenId", req.TokenID)
		amount, err := h.usecase.GetBalance(ctx.UserContext(), owner, tokenID)
		if err != nil {
			return errors.WithStack(mapDomainError(err))
		}
		list = []balanceEntry{{TokenID: tokenID.Dec(), Amount: amount.Dec()}}
	} else {
		balances, err := h.usecase.GetBalancesByOwner(ctx.UserContext(), owner)
		if err != nil {
			return errors.WithStack(mapDomainError(err))
		}
		list = lo.Map(balances, func(balance entity.Balance, _ int) balanceEntry {
			return balanceEntry{
				TokenID: balance.TokenID.Dec(),
				Amount:  balance.Amount.Dec(),
			}
		})
	}

	resp := getBalancesResponse{
		Result: &getBalancesResult{
			Owner: owner.Hex(),
			List:  list,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
