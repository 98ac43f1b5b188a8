package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/robotalks/mcal.go/pkg/usart"
)

// StandardRates are the common baud rates within the supported range.
var StandardRates = []uint32{
	1200, 2400, 4800, 9600, 14400, 19200, 38400, 57600,
	115200, 230400, 460800, 921600, 1000000, 2000000, 3000000,
}

// Row is the divisor of one baud rate.
type Row struct {
	Baud     uint32
	Divisor  usart.Divisor
	Actual   float64
	ErrorPct float64
	// Err is set when the driver would reject the rate at this clock.
	Err error
}

// Table computes a Row per rate at refHz.
func Table(refHz uint32, rates []uint32) []Row {
	rows := make([]Row, 0, len(rates))
	for _, baud := range rates {
		d := usart.ComputeDivisor(refHz, baud)
		_, err := usart.Synthesize(refHz, baud)
		rows = append(rows, Row{
			Baud:     baud,
			Divisor:  d,
			Actual:   d.BaudRate(refHz),
			ErrorPct: d.ErrorPercent(refHz, baud),
			Err:      err,
		})
	}
	return rows
}

// WriteTable prints rows aligned.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BAUD\tMANTISSA\tFRACTION\tBRR\tACTUAL\tERROR%\t")
	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(tw, "%d\t%d\t%d\t-\t-\tunreachable\t\n", r.Baud, r.Divisor.Mantissa, r.Divisor.Fraction)
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%#06x\t%.2f\t%+.3f\t\n",
			r.Baud, r.Divisor.Mantissa, r.Divisor.Fraction, r.Divisor.BRR(), r.Actual, r.ErrorPct)
	}
	return tw.Flush()
}

// Stats summarizes divisor error over a range of baud rates.
type Stats struct {
	Count     int
	Mean      float64
	StdDev    float64
	Worst     float64
	WorstBaud uint32
	// Over counts rates whose error exceeds the tolerance.
	Over []uint32
}

// Check sweeps [lo, hi] by step at refHz. Rates whose divisor does not fit
// the register are skipped.
func Check(refHz, lo, hi, step uint32, tolerance float64) (*Stats, error) {
	if step == 0 || lo > hi {
		return nil, fmt.Errorf("empty range %d..%d step %d", lo, hi, step)
	}
	if lo < usart.MinBaudRate {
		lo = usart.MinBaudRate
	}
	if hi > usart.MaxBaudRate {
		hi = usart.MaxBaudRate
	}
	var (
		rates []uint32
		errs  []float64
	)
	for baud := lo; baud <= hi; baud += step {
		d := usart.ComputeDivisor(refHz, baud)
		if !d.Valid() {
			continue
		}
		rates = append(rates, baud)
		errs = append(errs, abs(d.ErrorPercent(refHz, baud)))
		if hi-baud < step {
			break
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no rate in %d..%d is reachable at %d Hz", lo, hi, refHz)
	}
	st := &Stats{Count: len(errs)}
	st.Mean = stat.Mean(errs, nil)
	if len(errs) > 1 {
		st.StdDev = stat.StdDev(errs, nil)
	}
	worst := floats.MaxIdx(errs)
	st.Worst, st.WorstBaud = errs[worst], rates[worst]
	for n, e := range errs {
		if e > tolerance {
			st.Over = append(st.Over, rates[n])
		}
	}
	slices.Sort(st.Over)
	return st, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
