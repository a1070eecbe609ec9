// Command enipscan connects to a PLC and periodically reads a batch of
// tags via scan.Bucket, printing each round's results.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/renej-github/etherip/cmd/internal/clihelp"
	"github.com/renej-github/etherip/scan"
)

func main() {
	var conn clihelp.ConnFlags
	var intervalMs int
	var tagsCSV string

	cmd := &cobra.Command{
		Use:   "enipscan",
		Short: "Periodically read a batch of tags over EtherNet/IP",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := strings.Split(tagsCSV, ",")
			for i := range tags {
				tags[i] = strings.TrimSpace(tags[i])
			}
			if len(tags) == 0 || (len(tags) == 1 && tags[0] == "") {
				return fmt.Errorf("--tags must name at least one tag")
			}

			sess, err := conn.Open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer sess.Close()

			scanner := scan.NewScanner(sess)
			bucket := scanner.AddBucket("default", tags, time.Duration(intervalMs)*time.Millisecond)
			defer scanner.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case <-stop:
					return nil
				case results := <-bucket.Results():
					for _, r := range results {
						if r.Err != nil {
							fmt.Printf("%-20s ERROR %v\n", r.Tag, r.Err)
							continue
						}
						fmt.Printf("%-20s %s\n", r.Tag, clihelp.FormatValue(r.Value))
					}
					fmt.Println()
				}
			}
		},
	}
	conn.Register(cmd)
	cmd.Flags().IntVar(&intervalMs, "interval-ms", 1000, "poll interval in milliseconds")
	cmd.Flags().StringVar(&tagsCSV, "tags", "", "comma-separated list of tags to poll (required)")
	cmd.MarkFlagRequired("tags")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "enipscan: %v\n", err)
		os.Exit(1)
	}
}
