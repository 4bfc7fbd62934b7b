package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
	"github.com/noama-samreen/dasaf-cbgpt/internal/markup"
)

// SetCmd implements the 'set' command.
type SetCmd struct {
	Topic string `short:"t" name:"topic" required:"" help:"Topic the text belongs to"`
	File  string `short:"f" name:"file" help:"Read the analysis from this file instead of stdin"`
}

func (c *SetCmd) Run(g *Global, root *CLI) (err error) {
	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	topic, err := s.topic(c.Topic)
	if err != nil {
		return err
	}
	body, err := c.read(g.Stdin)
	if err != nil {
		return err
	}
	if !markup.HasContent(body) {
		return errors.ValidationError("analysis text is empty (use 'dasaf delete' to remove one)").
			ForTopic(topic.Name).
			Build()
	}

	rec, err := s.store.Put(context.Background(), topic.Name, body)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Stored %s (%s)\n", topic.Name, rec.Fingerprint)
	return nil
}

func (c *SetCmd) read(stdin io.Reader) (string, error) {
	if c.File == "" || c.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read stdin").Build()
		}
		return string(data), nil
	}
	// #nosec G304 - path is supplied by the operator
	data, err := os.ReadFile(c.File)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFoundError("analysis file not found").WithContext(errors.ContextPath, c.File).Build()
		}
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to read analysis file").
			WithContext(errors.ContextPath, c.File).
			Build()
	}
	return string(data), nil
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Topic string `short:"t" name:"topic" required:"" help:"Topic to print"`
}

func (c *ShowCmd) Run(g *Global, root *CLI) (err error) {
	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	topic, err := s.topic(c.Topic)
	if err != nil {
		return err
	}
	rec, err := s.store.Get(context.Background(), topic.Name)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, strings.TrimRight(rec.Body, "\n"))
	return nil
}

// DeleteCmd implements the 'delete' command.
type DeleteCmd struct {
	Topic string `short:"t" name:"topic" required:"" help:"Topic whose analysis is removed"`
}

func (c *DeleteCmd) Run(g *Global, root *CLI) (err error) {
	s, err := openSession(root)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	// Stored texts for topics no longer in the catalog can still be removed.
	if err := s.store.Delete(context.Background(), c.Topic); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Removed %s\n", c.Topic)
	return nil
}
