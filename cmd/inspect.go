package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/mendelics-labs/bcf2"
	"github.com/mendelics-labs/bcf2/bcf2log"
	"github.com/mendelics-labs/bcf2/internal/streamio"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.bcf>",
	Short: "Print the embedded VCF header and a per-record field census",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log, fileLog := bcf2log.New(logLevel, logFile)
	filename := args[0]

	fh, err := streamio.Open(filename)
	if err != nil {
		return err
	}
	defer fh.Close()

	r, err := bcf2.NewReader(fh)
	if err != nil {
		return err
	}
	log.Info("opened stream", "file", filename, "samples", len(r.SampleNames()))
	if fileLog != nil {
		fileLog.Info("opened stream", "file", filename, "samples", len(r.SampleNames()))
	}

	fmt.Printf("# embedded header\n%s\n", r.HeaderText())
	fmt.Printf("# samples: %d\n", len(r.SampleNames()))

	nRecords := 0
	infoCounts := make(map[string]int)
	formatCounts := make(map[string]int)
	for {
		vc, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", nRecords, err)
		}
		nRecords++
		for _, key := range vc.InfoOrder {
			infoCounts[key]++
		}
		order, err := vc.Genotypes.FormatOrder()
		if err != nil {
			return fmt.Errorf("record %d: %w", nRecords-1, err)
		}
		for _, key := range order {
			formatCounts[key]++
		}
	}

	fmt.Printf("# records: %d\n", nRecords)
	printCensus("INFO", infoCounts)
	printCensus("FORMAT", formatCounts)
	return nil
}

func printCensus(label string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("# %s field census\n", label)
	for _, k := range keys {
		fmt.Printf("%s\t%s\t%d\n", label, k, counts[k])
	}
}
