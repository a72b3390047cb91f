package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/openmint/issuer-node/common/errs"
	"github.com/openmint/issuer-node/internal/config"
	"github.com/openmint/issuer-node/internal/postgres"
	"github.com/openmint/issuer-node/modules/issuance/datagateway"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	issuancepostgres "github.com/openmint/issuer-node/modules/issuance/repository/postgres"
	"github.com/openmint/issuer-node/pkg/parquetutils"
	"github.com/spf13/cobra"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

type exportCmdOptions struct {
	Output       string
	FromSequence uint64
	S3Bucket     string
	S3Key        string
	S3Region     string
}

func NewExportCommand() *cobra.Command {
	opts := &exportCmdOptions{}

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the event log to a parquet file",
		Example: `openmint export --output events.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Output, "output", "events.parquet", "Output parquet file path")
	flags.Uint64Var(&opts.FromSequence, "from-sequence", 0, "Export events with sequence greater than this value")
	flags.StringVar(&opts.S3Bucket, "s3-bucket", "", "Upload the export to this S3 bucket instead of writing a local file")
	flags.StringVar(&opts.S3Key, "s3-key", "events.parquet", "S3 object key for the uploaded export")
	flags.StringVar(&opts.S3Region, "s3-region", "", "S3 region for the uploaded export")

	return cmd
}

// exportEventRow is the flattened parquet schema of one event log entry.
type exportEventRow struct {
	Sequence  int64  `parquet:"name=sequence, type=INT64"`
	Authority string `parquet:"name=authority, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type      string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Operator  string `parquet:"name=operator, type=BYTE_ARRAY, convertedtype=UTF8"`
	Payload   string `parquet:"name=payload, type=BYTE_ARRAY, convertedtype=UTF8"`
	CreatedAt int64  `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

const exportPageSize = 1000

func exportHandler(opts *exportCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()
	ctx := cmd.Context()

	pg, err := postgres.NewPool(ctx, conf.Modules.Issuance.Postgres)
	if err != nil {
		return errors.Wrap(err, "can't create Postgres connection pool")
	}
	defer pg.Close()
	repo := issuancepostgres.NewRepository(pg)

	authority, err := func() (ethcommon.Address, error) {
		if configured := conf.Modules.Issuance.Authority; configured != "" {
			if !ethcommon.IsHexAddress(configured) {
				return ethcommon.Address{}, errors.Wrapf(errs.InvalidArgument, "%q is not a valid authority address", configured)
			}
			return ethcommon.HexToAddress(configured), nil
		}
		latest, err := repo.GetLatestAuthority(ctx)
		if err != nil {
			return ethcommon.Address{}, errors.Wrap(err, "can't load latest authority")
		}
		return latest.Address, nil
	}()
	if err != nil {
		return errors.WithStack(err)
	}

	var rows []exportEventRow
	fromSequence := opts.FromSequence
	for {
		events, err := repo.ListEvents(ctx, datagateway.ListEventsParams{
			Authority:    authority,
			FromSequence: fromSequence,
			Limit:        exportPageSize,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list events")
		}
		for _, event := range events {
			row, err := exportEventRowFromEntity(event)
			if err != nil {
				return errors.WithStack(err)
			}
			rows = append(rows, row)
			fromSequence = event.Sequence
		}
		if len(events) < exportPageSize {
			break
		}
	}

	if opts.S3Bucket != "" {
		if err := exportToS3(cmd, opts, rows); err != nil {
			return errors.WithStack(err)
		}
	} else {
		destFile, err := local.NewLocalFileWriter(opts.Output)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		if err := writeExport(destFile, rows); err != nil {
			return errors.WithStack(err)
		}
		fmt.Printf("Exported %d events to %s\n", len(rows), opts.Output)
	}
	return nil
}

func writeExport(destFile source.ParquetFile, rows []exportEventRow) error {
	if err := parquetutils.WriteAll(destFile, rows); err != nil {
		_ = destFile.Close()
		return errors.Wrap(err, "failed to write parquet data")
	}
	if err := destFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}
	return nil
}

func exportToS3(cmd *cobra.Command, opts *exportCmdOptions, rows []exportEventRow) error {
	buffer := parquetutils.NewBufferFile()
	if err := writeExport(buffer, rows); err != nil {
		return errors.WithStack(err)
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "can't load aws user config")
	}
	s3client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if opts.S3Region != "" {
			o.Region = opts.S3Region
		}
	})
	uploader := manager.NewUploader(s3client)
	_, err = uploader.Upload(cmd.Context(), &s3.PutObjectInput{
		Bucket: aws.String(opts.S3Bucket),
		Key:    aws.String(opts.S3Key),
		Body:   bytes.NewReader(buffer.Bytes()),
	})
	if err != nil {
		return errors.Wrap(err, "failed to upload export to S3")
	}
	fmt.Printf("Exported %d events to s3://%s/%s\n", len(rows), opts.S3Bucket, opts.S3Key)
	return nil
}

func exportEventRowFromEntity(event entity.Event) (exportEventRow, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return exportEventRow{}, errors.Wrap(err, "failed to marshal event payload")
	}
	return exportEventRow{
		Sequence:  int64(event.Sequence),
		Authority: event.Authority.Hex(),
		Type:      event.Type.String(),
		Operator:  event.Operator.Hex(),
		Payload:   string(payload),
		CreatedAt: event.CreatedAt.UnixMilli(),
	}, nil
}
