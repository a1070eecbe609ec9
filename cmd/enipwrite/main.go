// Command enipwrite writes one value to a tag on a
// ControlLogix/CompactLogix controller.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/renej-github/etherip/cmd/internal/clihelp"
)

func main() {
	var conn clihelp.ConnFlags
	var typeName string

	cmd := &cobra.Command{
		Use:   "enipwrite <tag> <value>",
		Short: "Write a value to a tag over EtherNet/IP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, raw := args[0], args[1]

			v, err := clihelp.ParseValue(typeName, raw)
			if err != nil {
				return err
			}

			sess, err := conn.Open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer sess.Close()

			var ctx [8]byte
			if err := sess.Write(tag, v, ctx); err != nil {
				return fmt.Errorf("write %s: %w", tag, err)
			}
			fmt.Printf("wrote %s = %s\n", tag, clihelp.FormatValue(v))
			return nil
		},
	}
	conn.Register(cmd)
	cmd.Flags().StringVar(&typeName, "type", "DINT", "CIP type of the value (BOOL, SINT, INT, DINT, LINT, REAL, LREAL, BITS, STRING)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "enipwrite: %v\n", err)
		os.Exit(1)
	}
}
