package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/samber/lo"
)

type hasRoleRequest struct {
	Role      string `params:"role"`
	Principal string `params:"principal"`
}

func (r hasRoleRequest) Validate() error {
	var errList []error
	if !entity.Role(r.Role).IsValid() {
		errList = append(errList, errors.Errorf("unknown role '%s'", r.Role))
	}
	if _, err := parseAddress("principal", r.Principal); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type hasRoleResult struct {
	Role      string `json:"role"`
	Principal string `json:"principal"`
	HasRole   bool   `json:"hasRole"`
}

type hasRoleResponse = common.HttpResponse[hasRoleResult]

func (h *HttpHandler) HasRole(ctx *fiber.Ctx) (err error) {
	var req hasRoleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	principal, _ := parseAddress("principal", req.Principal)

	hasRole, err := h.usecase.HasRole(ctx.UserContext(), entity.Role(req.Role), principal)
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := hasRoleResponse{
		Result: &hasRoleResult{
			Role:      req.Role,
			Principal: principal.Hex(),
			HasRole:   hasRole,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}

type getRoleMembersRequest struct {
	Role string `params:"role"`
}

func (r getRoleMembersRequest) Validate() error {
	var errList []error
	if !entity.Role(r.Role).IsValid() {
		errList = append(errList, errors.Errorf("unknown role '%s'", r.Role))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type roleMemberEntry struct {
	Principal string `json:"principal"`
	Immutable bool   `json:"immutable"`
}

type getRoleMembersResult struct {
	Role string            `json:"role"`
	List []roleMemberEntry `json:"list"`
}

type getRoleMembersResponse = common.HttpResponse[getRoleMembersResult]

func (h *HttpHandler) GetRoleMembers(ctx *fiber.Ctx) (err error) {
	var req getRoleMembersRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	members, err := h.usecase.GetRoleMembers(ctx.UserContext(), entity.Role(req.Role))
	if err != nil {
		return errors.WithStack(mapDomainError(err))
	}

	resp := getRoleMembersResponse{
		Result: &getRoleMembersResult{
			Role: req.Role,
			List: lo.Map(members, func(member entity.RoleMember, _ int) roleMemberEntry {
				return roleMemberEntry{
					Principal: member.Principal.Hex(),
					Immutable: member.Immutable,
				}
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
