package httphandler

import (
	"time"

	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/samber/lo"
)

type eventResult struct {
	Sequence  uint64              `json:"sequence"`
	Authority string              `json:"authority"`
	Type      string              `json:"type"`
	Operator  string              `json:"operator"`
	Payload   entity.EventPayload `json:"payload"`
	CreatedAt time.Time           `json:"createdAt"`
}

func eventResultFromEntity(event entity.Event) eventResult {
	return eventResult{
		Sequence:  event.Sequence,
		Authority: event.Authority.Hex(),
		Type:      event.Type.String(),
		Operator:  event.Operator.Hex(),
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
}

func eventResultsFromEntities(events []entity.Event) []eventResult {
	return lo.Map(events, func(event entity.Event, _ int) eventResult {
		return eventResultFromEntity(event)
	})
}
