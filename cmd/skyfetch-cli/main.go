// Skyfetch CLI — инструмент командной строки для управления
// заданиями через HTTP API демона.
//
// Использование:
//
//	skyfetch [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	job     Управление заданиями
//	kinds   Реестр видов задач
//	queues  Размеры очередей планировщика
//	state   Чтение записей state
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/skyfetch/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "skyfetch",
		Short:         "Skyfetch CLI — surveillance record pipeline tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewJobCmd(clientFn, outputFn),
		cli.NewKindsCmd(clientFn, outputFn),
		cli.NewQueuesCmd(clientFn, outputFn),
		cli.NewStateCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
