package main

import (
	"flag"
	"fmt"
	"time"

	"finbrook/econfeed/internal/bond"
)

func parseDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Now(), nil
	}
	ts, err := time.Parse("2006-01-02", *s)
	if err == nil {
		return ts, nil
	}
	return time.Time{}, err
}

func fmtMetric(v *float64, failure error, scale float64, unit string) string {
	if v == nil {
		return fmt.Sprintf("n/a (%v)", failure)
	}
	return fmt.Sprintf("%.6f%s", *v*scale, unit)
}

func main() {
	coupon := flag.Float64("coupon", 0.0, "Coupon rate (%) of the bond")
	faceValue := flag.Float64("facevalue", 0, "Face value of the bond (0 to infer from the clean price)")
	cleanPrice := flag.Float64("cleanprice", 0.0, "Clean price of the bond")
	settlementDateStr := flag.String("settlementdate", "", "Settlement date of the bond (YYYY-MM-DD)")
	maturityDateStr := flag.String("maturitydate", "", "Maturity date of the bond (YYYY-MM-DD)")

	flag.Parse()

	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["coupon"] {
		fmt.Println("Error: -coupon flag is required")
		return
	}

	if !flagsSet["cleanprice"] {
		fmt.Println("Error: -cleanprice flag is required")
		return
	}

	if !flagsSet["maturitydate"] || maturityDateStr == nil || *maturityDateStr == "" {
		fmt.Println("Error: -maturitydate flag is required")
		return
	}

	settlementDate, err := parseDate(settlementDateStr)
	if err != nil {
		fmt.Printf("Error: invalid settlement date: %v\n", err)
		return
	}

	maturityDate, err := parseDate(maturityDateStr)
	if err != nil {
		fmt.Printf("Error: invalid maturity date: %v\n", err)
		return
	}

	if maturityDate.Before(settlementDate) {
		fmt.Println("Error: maturity date cannot be before settlement date")
		return
	}

	if *coupon < 0.0 || *coupon > 100.0 {
		fmt.Println("Error: coupon rate must be between 0.0 and 100.0")
		return
	}

	if *cleanPrice <= 0.0 {
		fmt.Println("Error: clean price must be greater than 0.0")
		return
	}

	quote := bond.Quote{
		Name:           "cli",
		CleanPrice:     *cleanPrice,
		CouponRate:     *coupon / 100,
		MaturityDate:   maturityDate,
		SettlementDate: settlementDate,
		FaceValue:      *faceValue,
	}

	terms := bond.DefaultTerms()
	val := bond.Value(quote, terms)

	fmt.Printf("Bond Details:\n")
	fmt.Printf("\tFace Value: %.3f\n", val.FaceValue)
	fmt.Printf("\tCoupon Rate: %.3f%%\n", *coupon)
	fmt.Printf("\tSettlement Date: %s\n", settlementDate.Format("2006-01-02"))
	fmt.Printf("\tMaturity Date: %s\n", maturityDate.Format("2006-01-02"))
	fmt.Printf("\tYears to Maturity: %.4f\n", quote.YearsToMaturity())
	fmt.Printf("\tClean Price: %.3f\n", *cleanPrice)
	fmt.Printf("\tAccrued Interest: %s\n", fmtMetric(val.AccruedInterest, nil, 1, ""))
	fmt.Printf("\tDirty Price: %s\n", fmtMetric(val.DirtyPrice, nil, 1, ""))
	fmt.Printf("\tYield to Maturity: %s\n", fmtMetric(val.YTM, val.YTMFailure, 100, "%"))
	fmt.Printf("\tAfter Tax Yield to Maturity: %s\n", fmtMetric(val.AfterTaxYTM, val.AfterTaxYTMFailure, 100, "%"))
}
