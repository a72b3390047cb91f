package postgres

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Addresses are stored as lowercase 0x-prefixed hex text. Token ids and
// amounts are stored as NUMERIC(78,0) and travel as decimal strings, which is
// wide enough for any 256-bit value.

func addressToString(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func addressFromString(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func uint256ToString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func uint256FromString(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid numeric value %q", s)
	}
	return v, nil
}
