package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iqwerty/iq/pkg/dom"
	"github.com/iqwerty/iq/pkg/template"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <template.html>",
		Short: "Compile a template and print the result",
		Long: `Compile a template file and print the expanded markup.

Directives and interpolation are evaluated against an empty scope, so
this is mainly useful for checking template syntax and literal
expressions:

  iq render header.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0])
		},
	}
	return cmd
}

func runRender(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	compiler := template.New(struct{}{}, dom.NewMetaTable(), log)

	frag, err := compiler.Compile(string(data))
	if err != nil {
		return err
	}

	fmt.Print(dom.RenderChildren(frag))
	return nil
}
