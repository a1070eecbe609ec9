// Command enipinfo connects to a PLC, runs the handshake and prints
// the controller's Identity attributes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/renej-github/etherip/cmd/internal/clihelp"
)

func main() {
	var conn clihelp.ConnFlags

	cmd := &cobra.Command{
		Use:   "enipinfo",
		Short: "Print controller identity over EtherNet/IP",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := conn.Open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer sess.Close()

			info := sess.DeviceInfo()
			fmt.Printf("name:        %s\n", info.Name)
			fmt.Printf("vendor:      %d\n", info.Vendor)
			fmt.Printf("device type: %d\n", info.DeviceType)
			fmt.Printf("revision:    %d\n", info.Revision)
			fmt.Printf("serial:      0x%08X\n", info.Serial)
			return nil
		},
	}
	conn.Register(cmd)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "enipinfo: %v\n", err)
		os.Exit(1)
	}
}
