// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"gopkg.ctolang.org/ctoc/internal/compiler"
	"gopkg.ctolang.org/ctoc/internal/fs"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/model"
)

type opts struct {
	Roots      []string
	Output     string
	DumpTokens bool
	DumpTree   bool
	WriteCTO   bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("ctoc", pflag.PanicOnError)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for model files.")
	flags.StringVar(&op.Output, "output", "-", "Output directory or - for STDOUT.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parsed model after parsing")
	flags.BoolVar(&op.WriteCTO, "write-cto", false, "Output normalized model text instead of JSON")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	f, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			panic(errAbs.Error())
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			panic(err.Error())
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
	)
	if err != nil {
		panic(err)
	}

	out, err := c.Compile(ctx, &idl.CompileRequest{
		Files:      targets,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
	})
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, err := range me {
				fmt.Fprintln(os.Stderr, err.Error())
			}
			os.Exit(1)
		}
		panic(err)
	}

	for _, m := range out.Models {
		rendered, err := render(m, op.WriteCTO)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if op.Output == "-" {
			fmt.Println(rendered)
			continue
		}
		if err := writeOutput(op.Output, m.URI, rendered, op.WriteCTO); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
}

func render(m *model.Model, writeCTO bool) (string, error) {
	if writeCTO {
		return model.Write(m), nil
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeOutput(output string, uri string, rendered string, writeCTO bool) error {
	ext := ".json"
	if writeCTO {
		ext = ".cto"
	}
	base := filepath.Base(uri)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	target := filepath.Join(output, base)
	if err := os.MkdirAll(output, os.ModeDir|0o755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(rendered), 0o644)
}
