package store

import (
	"context"

	"finbrook/econfeed/internal/collect"
	"finbrook/econfeed/internal/series"
)

var bondColumns = []string{
	"bond_name",
	"isin",
	"short_code",
	"combined_id",
	"currency_code",
	"clean_price",
	"coupon_rate",
	"maturity_date",
	"years_to_maturity",
	"face_value",
	"accrued_interest",
	"dirty_price",
	"ytm",
	"after_tax_ytm",
	"data_source",
	"scraped_date",
}

var bondConflictColumns = []string{"bond_name", "scraped_date"}

var observationColumns = []string{
	"series_id",
	"date",
	"value",
	"yoy_change",
	"data_source",
}

var observationConflictColumns = []string{"series_id", "date"}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// UpsertBonds stores every valued bond in collected, keyed by name and
// settlement date so a rerun for the same day overwrites rather than
// duplicates. Failed rows in collected are the collector's concern and are
// not written.
func (s *Postgres) UpsertBonds(ctx context.Context, table string, collected *collect.CollectedBonds) (int, error) {
	rows := make([][]any, 0, len(collected.Records))
	for _, rec := range collected.Records {
		q := rec.Quote
		rows = append(rows, []any{
			q.Name,
			nullIfEmpty(q.ISIN),
			nullIfEmpty(q.ShortCode),
			nullIfEmpty(collect.CombinedID(q)),
			"GBP",
			q.CleanPrice,
			q.CouponRate,
			q.MaturityDate,
			q.YearsToMaturity(),
			rec.Valuation.FaceValue,
			rec.Valuation.AccruedInterest,
			rec.Valuation.DirtyPrice,
			rec.Valuation.YTM,
			rec.Valuation.AfterTaxYTM,
			collected.Source,
			collected.SettlementDate,
		})
	}
	return s.UpsertBatch(ctx, table, bondColumns, rows, bondConflictColumns)
}

// UpsertObservations stores time series points keyed by series and date.
func (s *Postgres) UpsertObservations(ctx context.Context, obs []series.Observation) (int, error) {
	rows := make([][]any, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []any{
			o.SeriesID,
			o.Date,
			o.Value,
			o.YoYChange,
			o.Source,
		})
	}
	return s.UpsertBatch(ctx, TableSeriesObservations, observationColumns, rows, observationConflictColumns)
}
