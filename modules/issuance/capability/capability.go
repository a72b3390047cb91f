// Package capability defines the 4-byte capability identifiers the issuance
// authority reports through its discovery endpoint.
package capability

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// ID is a 4-byte capability identifier, rendered as 0x-prefixed hex.
type ID [4]byte

var (
	// Discovery is the capability of answering capability queries itself.
	Discovery = ID{0x01, 0xff, 0xc9, 0xa7}

	// MultiTokenLedger is the multi-token balance ledger capability
	// (fungible and non-fungible assets under one id space).
	MultiTokenLedger = ID{0xd9, 0xb6, 0x7a, 0x26}

	// RoleControl is the role-based access control capability.
	RoleControl = ID{0x79, 0x65, 0xdb, 0x0b}
)

// Supported lists every capability the authority reports as supported.
// Queries for any other identifier return false.
var Supported = []ID{Discovery, MultiTokenLedger, RoleControl}

func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse decodes a capability identifier from 8 hex digits with an optional
// 0x prefix.
func Parse(s string) (ID, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 8 {
		return ID{}, errors.Errorf("capability id must be 4 bytes, got %d hex digits", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, errors.Wrap(err, "invalid capability id")
	}
	var id ID
	copy(id[:], raw)
	return id, nil
}

// IsSupported reports whether id is one of the supported capabilities.
func IsSupported(id ID) bool {
	for _, s := range Supported {
		if id == s {
			return true
		}
	}
	return false
}
