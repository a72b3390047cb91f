package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventRoleGranted    EventType = "role_granted"
	EventRoleRevoked    EventType = "role_revoked"
	EventTransferSingle EventType = "transfer_single"
	EventTransferBatch  EventType = "transfer_batch"
	EventApprovalForAll EventType = "approval_for_all"
	EventURIPrefixSet   EventType = "uri_prefix_set"
)

func (t EventType) String() string {
	return string(t)
}

// Event is one entry of the append-only notification log. External indexers
// consume it from the webhook sink or the events endpoint.
type Event struct {
	Sequence  uint64
	Authority common.Address
	Type      EventType
	Operator  common.Address
	Payload   EventPayload
	CreatedAt time.Time
}

type EventPayload struct {
	Principal *common.Address `json:"principal,omitempty"`
	Role      Role            `json:"role,omitempty"`
	From      *common.Address `json:"from,omitempty"`
	To        *common.Address `json:"to,omitempty"`
	TokenIDs  []*uint256.Int  `json:"tokenIds,omitempty"`
	Amounts   []*uint256.Int  `json:"amounts,omitempty"`
	Approved  *bool           `json:"approved,omitempty"`
	URIs      []string        `json:"uris,omitempty"`
	URIPrefix *string         `json:"uriPrefix,omitempty"`

	// Prices mirrors the batch issuance input verbatim. Nothing reads it
	// back; it is carried for observers only.
	Prices []decimal.Decimal `json:"prices,omitempty"`
}
