package httphandler

import (
	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/modules/issuance/internal/metastore"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	// metaStore is nil when the metadata store is disabled. Mint-request
	// intake then acknowledges requests without storing documents.
	metaStore *metastore.Store
}

func New(usecase *usecase.Usecase, metaStore *metastore.Store) *HttpHandler {
	return &HttpHandler{
		usecase:   usecase,
		metaStore: metaStore,
	}
}

var domainErrorKinds = []errs.ErrorKind{
	errs.NotFound,
	errs.InvalidArgument,
	errs.Unsupported,
	errs.NotAuthorized,
	errs.AlreadyMember,
	errs.NotMember,
	errs.InvalidReceiver,
	errs.LengthMismatch,
}

// mapDomainError converts known domain failures into public error responses.
// Anything else passes through to the unhandled-error path.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainErrorKinds {
		if errors.Is(err, kind) {
			return errs.WithPublicMessageCode(err, "", string(kind))
		}
	}
	return err
}

func parseAddress(field, value string) (ethcommon.Address, error) {
	if !ethcommon.IsHexAddress(value) {
		return ethcommon.Address{}, errors.Errorf("'%s' is not a valid address", field)
	}
	return ethcommon.HexToAddress(value), nil
}

func parseTokenID(field, value string) (*uint256.Int, error) {
	tokenID, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, errors.Errorf("'%s' is not a valid token id", field)
	}
	return tokenID, nil
}

func parseQuantity(field, value string) (*uint256.Int, error) {
	quantity, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, errors.Errorf("'%s' is not a valid quantity", field)
	}
	return quantity, nil
}
