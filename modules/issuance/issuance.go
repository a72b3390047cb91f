package issuance

import (
	"context"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/core"
	"github.com/openmint/issuer-node/internal/config"
	"github.com/openmint/issuer-node/internal/postgres"
	"github.com/openmint/issuer-node/modules/issuance/api/httphandler"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/openmint/issuer-node/modules/issuance/internal/metastore"
	"github.com/openmint/issuer-node/modules/issuance/notifier"
	issuancepostgres "github.com/openmint/issuer-node/modules/issuance/repository/postgres"
	"github.com/openmint/issuer-node/modules/issuance/usecase"
	"github.com/openmint/issuer-node/pkg/logger"
	"github.com/openmint/issuer-node/pkg/logger/slogx"
	"github.com/samber/do/v2"
)

// Module bundles the issuance worker (the webhook notifier) with the
// resources to release on shutdown.
type Module struct {
	notifier     *notifier.Notifier
	cleanupFuncs []func(context.Context) error
}

var _ core.Worker = (*Module)(nil)

func (m *Module) Run(ctx context.Context) error {
	return m.notifier.Run(ctx)
}

func (m *Module) Shutdown() error {
	m.notifier.Shutdown()
	ctx := context.Background()
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.Wrap(err, "failed to cleanup")
		}
	}
	return nil
}

func New(injector do.Injector) (core.Worker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.Issuance

	var cleanupFuncs []func(context.Context) error
	pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return nil, errors.Wrap(err, "Invalid Postgres configuration for issuance")
		}
		return nil, errors.Wrap(err, "can't create Postgres connection pool")
	}
	cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
		pg.Close()
		return nil
	})
	repo := issuancepostgres.NewRepository(pg)

	authority, err := resolveAuthority(ctx, repo, moduleConf.Authority)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	logger.InfoContext(ctx, "Serving issuance authority", slogx.String("authority", authority.Address.Hex()))

	eventNotifier, err := notifier.New(moduleConf.Webhooks)
	if err != nil {
		return nil, errors.Wrap(err, "invalid webhook configuration")
	}

	var metaStore *metastore.Store
	if moduleConf.Metadata.Enabled {
		metaStore, err = metastore.New(ctx, moduleConf.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "can't create metadata store")
		}
	}

	issuanceUsecase := usecase.New(repo, authority.Address, eventNotifier)
	issuanceHTTPHandler := httphandler.New(issuanceUsecase, metaStore)

	httpServer := do.MustInvoke[*fiber.App](injector)
	if err := issuanceHTTPHandler.Mount(httpServer); err != nil {
		return nil, errors.Wrap(err, "can't mount issuance API")
	}
	logger.InfoContext(ctx, "Mounted HTTP handler")

	return &Module{
		notifier:     eventNotifier,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func resolveAuthority(ctx context.Context, repo *issuancepostgres.Repository, configured string) (*entity.Authority, error) {
	if configured != "" {
		if !ethcommon.IsHexAddress(configured) {
			return nil, errors.Wrapf(errs.InvalidArgument, "%q is not a valid authority address", configured)
		}
		authority, err := repo.GetAuthority(ctx, ethcommon.HexToAddress(configured))
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return nil, errors.Errorf("authority %q does not exist, run `openmint init` first", configured)
			}
			return nil, errors.Wrap(err, "can't load configured authority")
		}
		return authority, nil
	}

	authority, err := repo.GetLatestAuthority(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.New("no authority deployed yet, run `openmint init` first")
		}
		return nil, errors.Wrap(err, "can't load latest authority")
	}
	return authority, nil
}
