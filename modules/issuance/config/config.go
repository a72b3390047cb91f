package config

import (
	"github.com/openmint/issuer-node/internal/postgres"
	"github.com/openmint/issuer-node/modules/issuance/internal/metastore"
)

type Config struct {
	// Postgres holds the issuance ledger database connection settings.
	Postgres postgres.Config `mapstructure:"postgres"`

	// Authority is the address of the authority served by this node.
	// Written by `openmint init`. If empty, the most recently created
	// authority is served.
	Authority string `mapstructure:"authority"`

	// Webhooks are notification sink URLs. Every committed event is POSTed
	// to each URL as JSON.
	Webhooks []string `mapstructure:"webhooks"`

	// Metadata configures the S3-backed metadata document store used by the
	// mint-request intake endpoint.
	Metadata metastore.Config `mapstructure:"metadata"`
}
