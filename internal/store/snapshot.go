package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"

	"finbrook/econfeed/internal/collect"
)

// SnapshotRow is the flat parquet schema for a day's bond valuations.
// Pointer fields are optional columns; a failed solve writes a null.
type SnapshotRow struct {
	Name            string
	ISIN            string
	ShortCode       string
	Source          string
	SettlementDate  time.Time
	MaturityDate    time.Time
	YearsToMaturity float64
	CouponRate      float64
	CleanPrice      float64
	FaceValue       float64
	AccruedInterest *float64
	DirtyPrice      *float64
	YTM             *float64
	AfterTaxYTM     *float64
}

func snapshotRows(collected *collect.CollectedBonds) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(collected.Records))
	for _, rec := range collected.Records {
		q := rec.Quote
		rows = append(rows, SnapshotRow{
			Name:            q.Name,
			ISIN:            q.ISIN,
			ShortCode:       q.ShortCode,
			Source:          collected.Source,
			SettlementDate:  collected.SettlementDate,
			MaturityDate:    q.MaturityDate,
			YearsToMaturity: q.YearsToMaturity(),
			CouponRate:      q.CouponRate,
			CleanPrice:      q.CleanPrice,
			FaceValue:       rec.Valuation.FaceValue,
			AccruedInterest: rec.Valuation.AccruedInterest,
			DirtyPrice:      rec.Valuation.DirtyPrice,
			YTM:             rec.Valuation.YTM,
			AfterTaxYTM:     rec.Valuation.AfterTaxYTM,
		})
	}
	return rows
}

func writeSnapshot(rows []SnapshotRow, output io.Writer) error {
	writer := parquet.NewGenericWriter[SnapshotRow](output)
	defer writer.Close()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	return nil
}

// SnapshotToPath writes collected to <basepath>/YYYY/MM/DD/<source>.parquet
// and returns the written path.
func SnapshotToPath(ctx context.Context, collected *collect.CollectedBonds, basepath string) (string, error) {
	date := collected.SettlementDate

	path := fmt.Sprintf(
		"%s%c%04d%c%02d%c%02d",
		basepath,
		filepath.Separator,
		date.UTC().Year(),
		filepath.Separator,
		date.UTC().Month(),
		filepath.Separator,
		date.UTC().Day(),
	)

	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return "", err
	}

	outPath := fmt.Sprintf("%s%c%s.parquet", path, filepath.Separator, collected.Source)

	file, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeSnapshot(snapshotRows(collected), file); err != nil {
		return "", err
	}

	return outPath, nil
}

type S3Path struct {
	Bucket string
	Prefix string
}

func ParseS3(path string) (*S3Path, error) {
	if !strings.HasPrefix(path, "s3://") {
		return nil, fmt.Errorf("path must start with s3://")
	}

	path = strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(path, "/", 2)

	bucket := parts[0]

	var prefix string

	if len(parts) > 1 {
		prefix = parts[1]
		prefix = strings.TrimSuffix(prefix, "/")
	} else {
		prefix = ""
	}

	return &S3Path{
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

// SnapshotToS3 writes collected to a temp parquet file and uploads it to
// s3://<bucket>/[prefix/]YYYY/MM/DD/<source>.parquet.
func SnapshotToS3(ctx context.Context, collected *collect.CollectedBonds, s3Client *s3.Client, dst *S3Path) (string, error) {
	tmp, err := os.CreateTemp("", "econfeed-*.parquet")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer tmp.Close()
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(snapshotRows(collected), tmp); err != nil {
		return "", err
	}

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to seek to start of file: %w", err)
	}

	date := collected.SettlementDate

	key := fmt.Sprintf(
		"%04d/%02d/%02d/%s.parquet",
		date.UTC().Year(),
		date.UTC().Month(),
		date.UTC().Day(),
		collected.Source,
	)

	if dst.Prefix != "" {
		key = fmt.Sprintf("%s/%s", dst.Prefix, key)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(key),
		Body:   tmp,
	}

	if _, err := s3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload file to s3://%s/%s: %w", dst.Bucket, key, err)
	}

	outPath := fmt.Sprintf("s3://%s/%s", dst.Bucket, key)

	return outPath, nil
}
