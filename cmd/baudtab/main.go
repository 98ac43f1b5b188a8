package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robotalks/mcal.go/pkg/board"
	"github.com/robotalks/mcal.go/pkg/usart"
)

var (
	clockHz   uint32
	boardName string
	busName   string

	checkOpts = struct {
		from, to, step uint32
		tolerance      float64
	}{from: usart.MinBaudRate, to: 115200, step: 100, tolerance: 2.0}

	rootCmd = &cobra.Command{
		Use:          "baudtab",
		Short:        "USART baud divisor tables",
		Long:         "Compute BRR divisors and their error for a peripheral clock, given directly or by board and bus.",
		SilenceUsage: true,
	}

	tableCmd = &cobra.Command{
		Use:   "table [BAUD...]",
		Short: "Print the divisor of standard or given baud rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			refHz, err := referenceClock()
			if err != nil {
				return err
			}
			rates := StandardRates
			if len(args) > 0 {
				if rates, err = parseRates(args); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reference clock %d Hz\n", refHz)
			return WriteTable(cmd.OutOrStdout(), Table(refHz, rates))
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report divisor error statistics over a range of baud rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			refHz, err := referenceClock()
			if err != nil {
				return err
			}
			st, err := Check(refHz, checkOpts.from, checkOpts.to, checkOpts.step, checkOpts.tolerance)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rates at %d Hz: mean error %.3f%% stddev %.3f%%, worst %.3f%% at %d\n",
				st.Count, refHz, st.Mean, st.StdDev, st.Worst, st.WorstBaud)
			if len(st.Over) > 0 {
				fmt.Fprintf(out, "%d rates above %.2f%%, first %d\n", len(st.Over), checkOpts.tolerance, st.Over[0])
			}
			return nil
		},
	}

	boardsCmd = &cobra.Command{
		Use:   "boards",
		Short: "List the built-in boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSYSCLK\tUSARTS\tDESCRIPTION")
			for _, name := range board.All().Names() {
				desc, err := board.All().Find(name)
				if err != nil {
					return err
				}
				hz, err := desc.SysClockHz()
				if err != nil {
					return err
				}
				usarts := make([]string, 0, len(desc.USARTs))
				for _, u := range desc.USARTs {
					usarts = append(usarts, u.Name)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, hz, strings.Join(usarts, ","), desc.Description)
			}
			return tw.Flush()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().Uint32VarP(&clockHz, "clock", "c", 0, "Peripheral clock in Hz, overrides --board")
	rootCmd.PersistentFlags().StringVarP(&boardName, "board", "b", board.DefaultBoard, "Board to take the clock from")
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "apb1", "Bus of the USART: apb1 or apb2")
	checkCmd.Flags().Uint32Var(&checkOpts.from, "from", checkOpts.from, "Lowest baud rate")
	checkCmd.Flags().Uint32Var(&checkOpts.to, "to", checkOpts.to, "Highest baud rate")
	checkCmd.Flags().Uint32Var(&checkOpts.step, "step", checkOpts.step, "Baud rate step")
	checkCmd.Flags().Float64Var(&checkOpts.tolerance, "tolerance", checkOpts.tolerance, "Acceptable error in percent")
	rootCmd.AddCommand(tableCmd, checkCmd, boardsCmd)
}

func referenceClock() (uint32, error) {
	if clockHz != 0 {
		return clockHz, nil
	}
	desc, err := board.All().Find(boardName)
	if err != nil {
		return 0, err
	}
	bus, err := board.ParseBus(busName)
	if err != nil {
		return 0, err
	}
	return desc.BusHz(bus)
}

func parseRates(args []string) ([]uint32, error) {
	rates := make([]uint32, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q", arg)
		}
		if err := (&usart.Config{BaudRate: uint32(v), Duplex: usart.FullDuplex}).Validate(); err != nil {
			return nil, err
		}
		rates = append(rates, uint32(v))
	}
	return rates, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
