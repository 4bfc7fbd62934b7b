package commands

import (
	"fmt"

	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Wrote configuration to %s\n", root.Config)
	_, _ = fmt.Fprintf(g.Stdout, "Set %s in the environment or a .env file before running 'dasaf analyze'\n", config.EnvLLMAPIKey)
	return nil
}
