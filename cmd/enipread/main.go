// Command enipread reads one tag from a ControlLogix/CompactLogix
// controller and prints its value.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/renej-github/etherip/cmd/internal/clihelp"
)

func main() {
	var conn clihelp.ConnFlags
	var elements int

	cmd := &cobra.Command{
		Use:   "enipread <tag>",
		Short: "Read a tag over EtherNet/IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]

			sess, err := conn.Open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer sess.Close()

			var ctx [8]byte
			v, err := sess.Read(tag, elements, ctx)
			if err != nil {
				return fmt.Errorf("read %s: %w", tag, err)
			}
			fmt.Println(clihelp.FormatValue(v))
			return nil
		},
	}
	conn.Register(cmd)
	cmd.Flags().IntVar(&elements, "elements", 1, "number of consecutive elements to read")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "enipread: %v\n", err)
		os.Exit(1)
	}
}
