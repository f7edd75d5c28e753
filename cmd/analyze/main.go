// Command analyze runs Elliott Wave analysis over a CSV price series and
// prints the result as JSON.
//
// Usage:
//
//	analyze -file prices.csv [-column 4] [-sensitivity 0.5] [-indicators]
//
// The CSV column index selects the closing price (default: last column).
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"elliott-wave-analyzer/internal/elliott"
	"elliott-wave-analyzer/internal/indicators"
)

func main() {
	file := flag.String("file", "", "CSV file with price data (required)")
	column := flag.Int("column", -1, "zero-based column index of the closing price; -1 means last column")
	sensitivity := flag.Float64("sensitivity", 0.5, "pivot detection sensitivity, 0.1 to 1.0")
	withIndicators := flag.Bool("indicators", false, "attach RSI/MACD confirmations")
	skipHeader := flag.Bool("header", true, "skip the first CSV row")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	prices, err := readPrices(*file, *column, *skipHeader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read prices: %v\n", err)
		os.Exit(1)
	}

	var snapshot *elliott.IndicatorSnapshot
	if *withIndicators {
		snapshot = indicators.Snapshot(prices)
	}

	analyzer := elliott.NewAnalyzer()
	analysis, err := analyzer.AnalyzeWithIndicators(prices, *sensitivity, snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	output := struct {
		Analysis  *elliott.Analysis          `json:"analysis"`
		Fibonacci *elliott.FibonacciSnapshot `json:"fibonacci"`
		Targets   *elliott.PriceTargets      `json:"targets"`
	}{
		Analysis:  analysis,
		Fibonacci: elliott.LatestFibonacci(analysis.Waves),
		Targets:   elliott.PotentialTargets(analysis.CurrentWave, analysis.TradingSignal.Entry),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

func readPrices(path string, column int, skipHeader bool) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	prices := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		col := column
		if col < 0 || col >= len(row) {
			col = len(row) - 1
		}
		price, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		prices = append(prices, price)
	}
	return prices, nil
}
