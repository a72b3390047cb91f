package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/internal/metastore"
	"github.com/openmint/issuer-node/pkg/logger"
	"github.com/openmint/issuer-node/pkg/logger/slogx"
)

type createMintRequestRequest struct {
	Name        string `json:"name"`
	Img         string `json:"img"`
	EthAddress  string `json:"ethAddress"`
	Description string `json:"description"`
}

func (r createMintRequestRequest) Validate() error {
	var errList []error
	if r.Name == "" {
		errList = append(errList, errors.New("'name' is required"))
	}
	if r.Img == "" {
		errList = append(errList, errors.New("'img' is required"))
	}
	if r.Description == "" {
		errList = append(errList, errors.New("'description' is required"))
	}
	if _, err := parseAddress("ethAddress", r.EthAddress); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createMintRequestResult struct {
	Status      string `json:"status"`
	MetadataURI string `json:"metadataUri,omitempty"`
}

type createMintRequestResponse = common.HttpResponse[createMintRequestResult]

// CreateMintRequest accepts a self-serve mint request: it validates the
// submission, stores the metadata document, and acknowledges with 202.
// Accepted requests are not yet handed to the issuance pipeline.
//
// TODO: invoke IssueSingle with claimable=true for accepted requests once the
// claim flow for self-serve minters is finalized.
func (h *HttpHandler) CreateMintRequest(ctx *fiber.Ctx) (err error) {
	var req createMintRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.NewPublicError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	receiver, _ := parseAddress("ethAddress", req.EthAddress)

	var metadataURI string
	if h.metaStore != nil {
		metadataURI, err = h.metaStore.Put(ctx.UserContext(), metastore.Document{
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Img,
		})
		if err != nil {
			return errors.Wrap(err, "failed to store metadata document")
		}
	}

	logger.InfoContext(ctx.UserContext(), "Accepted mint request",
		slogx.String("name", req.Name),
		slogx.String("receiver", receiver.Hex()),
		slogx.String("metadata_uri", metadataURI),
	)

	resp := createMintRequestResponse{
		Result: &createMintRequestResult{
			Status:      "accepted",
			MetadataURI: metadataURI,
		},
	}
	return errors.WithStack(ctx.Status(fiber.StatusAccepted).JSON(resp))
}
