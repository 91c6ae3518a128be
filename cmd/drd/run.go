package main

import (
	"context"
	"fmt"
	"os"

	"github.com/willmcpherson2/drd/eval"
	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/internal/client"
	"github.com/willmcpherson2/drd/parser"
	"github.com/willmcpherson2/drd/printer"
)

// runCommand evaluates a single expression, either locally against an
// empty environment or by relaying it to a running server, mirroring
// the original CLI's `Run` variant (file-or-eval, optional --server).
type runCommand struct {
	Eval   string `short:"e" long:"eval" description:"Evaluate a string instead of a file" value-name:"STRING"`
	Server string `short:"s" long:"server" description:"Relay the expression to a running server instead of evaluating locally" value-name:"ADDR"`

	Args struct {
		File string `positional-arg-name:"file" description:"Input file to evaluate"`
	} `positional-args:"yes"`
}

func (c *runCommand) Execute(_ []string) error {
	text, err := c.inputText()
	if err != nil {
		return err
	}

	if c.Server != "" {
		result, err := client.Run(context.Background(), text, c.Server)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		fmt.Println(result)
		return nil
	}

	parsed, err := parser.Parse(text)
	if err != nil {
		return fmt.Errorf("run: parse: %w", err)
	}

	result, _, err := eval.Eval(parsed, exp.Env{})
	if err != nil {
		return fmt.Errorf("run: evaluate: %w", err)
	}

	fmt.Println(printer.Print(result))
	return nil
}

func (c *runCommand) inputText() (string, error) {
	if c.Eval != "" {
		return c.Eval, nil
	}
	if c.Args.File == "" {
		return "", fmt.Errorf("run: no file or --eval given")
	}
	buf, err := os.ReadFile(c.Args.File)
	if err != nil {
		return "", fmt.Errorf("run: read file: %w", err)
	}
	return string(buf), nil
}
