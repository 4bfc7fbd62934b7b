package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/noama-samreen/dasaf-cbgpt/cmd/dasaf/commands"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("dasaf"),
		kong.Description("Blockchain security analysis reports drafted with a language model"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Stdout: os.Stdout, Stdin: os.Stdin}
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
