// Command paycli lets a member pay a society bill from the terminal and
// waits for the payment to be confirmed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           "paycli",
		Short:         "Pay society bills over UPI",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.paycli.yaml)")

	load := func() (*Config, error) { return LoadConfig(cfgFile) }
	rootCmd.AddCommand(loginCmd(load))
	rootCmd.AddCommand(payCmd(load))
	rootCmd.AddCommand(ledgerCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
