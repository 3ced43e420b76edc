// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"

	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/model"
)

type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dumpTokens bool, dumpTree bool) (*model.Model, error)
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	return map[idl.FileKind]SubCompiler{
		idl.FileKindCTO:       &SubCompilerCTO{},
		idl.FileKindModelJSON: &SubCompilerModelJSON{},
	}
}
