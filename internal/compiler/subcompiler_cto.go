// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"fmt"

	"gopkg.ctolang.org/ctoc/internal/compiler/cto"
	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/model"
)

type SubCompilerCTO struct{}

func (self *SubCompilerCTO) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dumpTokens bool, dumpTree bool) (*model.Model, error) {
	lexer := cto.NewLexerCTO(r)
	parser := cto.NewParserCTO(r)
	lf, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	if dumpTokens {
		// Token streams are re-creatable because the file body can be
		// reopened, so dumping does not interfere with the parse below.
		stream, err := lf.Tokens(ctx)
		if err != nil {
			return nil, err
		}
		for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
			token := tok.Value()
			fmt.Printf("%-18s", token.Type)
			if token.Type != idl.TokenTypeNewline {
				fmt.Printf("'%s'", token.Value)
			}
			fmt.Println()
		}
	}
	pt, err := parser.PrepareParse(ctx, lf)
	if err != nil {
		return nil, err
	}
	parsed := pt.ParseModel()
	if parsed == nil {
		return nil, nil
	}
	if dumpTree {
		fmt.Println(parsed.String())
	}
	return parsed, nil
}
