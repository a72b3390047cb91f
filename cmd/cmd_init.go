package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/internal/config"
	"github.com/openmint/issuer-node/internal/postgres"
	issuancepostgres "github.com/openmint/issuer-node/modules/issuance/repository/postgres"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
	"github.com/spf13/cobra"
)

type initCmdOptions struct {
	Creator   string
	Minter    string
	URIPrefix string
}

func NewInitCommand() *cobra.Command {
	opts := &initCmdOptions{}

	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Deploy a new issuance authority",
		Example: `openmint init --minter 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 --uri-prefix "https://meta.example.com/tokens/"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Creator, "creator", "", "Creator address. Generated if omitted; the creator becomes an irrevocable admin.")
	flags.StringVar(&opts.Minter, "minter", "", "Initial minter address (required)")
	flags.StringVar(&opts.URIPrefix, "uri-prefix", "", "Base uri prefix for tokens without a stored uri")

	return cmd
}

func initHandler(opts *initCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	ctx := cmd.Context()

	if opts.Minter == "" {
		return errors.New("--minter is required")
	}
	if !ethcommon.IsHexAddress(opts.Minter) {
		return errors.Wrapf(errs.InvalidArgument, "%q is not a valid minter address", opts.Minter)
	}
	minter := ethcommon.HexToAddress(opts.Minter)

	var creator ethcommon.Address
	var generatedKey string
	if opts.Creator != "" {
		if !ethcommon.IsHexAddress(opts.Creator) {
			return errors.Wrapf(errs.InvalidArgument, "%q is not a valid creator address", opts.Creator)
		}
		creator = ethcommon.HexToAddress(opts.Creator)
	} else {
		key, err := crypto.GenerateKey()
		if err != nil {
			return errors.Wrap(err, "failed to generate creator key")
		}
		creator = crypto.PubkeyToAddress(key.PublicKey)
		generatedKey = hexutil.Encode(crypto.FromECDSA(key))
	}

	pg, err := postgres.NewPool(ctx, conf.Modules.Issuance.Postgres)
	if err != nil {
		return errors.Wrap(err, "can't create Postgres connection pool")
	}
	defer pg.Close()
	repo := issuancepostgres.NewRepository(pg)

	authority, err := usecase.Deploy(ctx, repo, usecase.DeployParams{
		Creator:       creator,
		InitialMinter: minter,
		BaseURIPrefix: opts.URIPrefix,
	})
	if err != nil {
		return errors.Wrap(err, "failed to deploy authority")
	}

	fmt.Println("Authority deployed")
	fmt.Printf("  address:    %s\n", authority.Address.Hex())
	fmt.Printf("  creator:    %s\n", authority.Creator.Hex())
	fmt.Printf("  minter:     %s\n", minter.Hex())
	fmt.Printf("  uri prefix: %q\n", authority.BaseURIPrefix)
	if generatedKey != "" {
		fmt.Printf("  creator key (store it safely, it will not be shown again): %s\n", generatedKey)
	}
	fmt.Println("Add the address to your config under modules.issuance.authority")
	return nil
}
