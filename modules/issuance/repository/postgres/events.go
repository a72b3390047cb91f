package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
)

func (r *Repository) AppendEvent(ctx context.Context, arg entity.Event) (uint64, error) {
	payloadBytes, err := json.Marshal(arg.Payload)
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal event payload")
	}

	var sequence int64
	err = r.q().QueryRow(ctx, `
		INSERT INTO issuance_events (authority, type, operator, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING sequence`,
		addressToString(arg.Authority),
		arg.Type.String(),
		addressToString(arg.Operator),
		payloadBytes,
		arg.CreatedAt.UTC(),
	).Scan(&sequence)
	if err != nil {
		return 0, errors.Wrap(err, "failed to append event")
	}
	return uint64(sequence), nil
}

func (r *Repository) ListEvents(ctx context.Context, arg datagateway.ListEventsParams) ([]entity.Event, error) {
	limit := arg.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q().Query(ctx, `
		SELECT sequence, authority, type, operator, payload, created_at
		FROM issuance_events
		WHERE authority = $1 AND sequence > $2
		ORDER BY sequence
		LIMIT $3`,
		addressToString(arg.Authority),
		int64(arg.FromSequence),
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	var events []entity.Event
	for rows.Next() {
		var (
			sequence     int64
			authorityStr string
			eventType    string
			operatorStr  string
			payloadBytes []byte
			createdAt    time.Time
		)
		if err := rows.Scan(&sequence, &authorityStr, &eventType, &operatorStr, &payloadBytes, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		authorityAddr, err := addressFromString(authorityStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		operator, err := addressFromString(operatorStr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		var payload entity.EventPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal event payload")
		}
		events = append(events, entity.Event{
			Sequence:  uint64(sequence),
			Authority: authorityAddr,
			Type:      entity.EventType(eventType),
			Operator:  operator,
			Payload:   payload,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate events")
	}
	return events, nil
}
