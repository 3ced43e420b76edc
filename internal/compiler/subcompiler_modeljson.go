// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/model"
)

// SubCompilerModelJSON loads a model that was previously exported in the
// JSON form, so that already-parsed models can be mixed with source files
// in a single compile.
type SubCompilerModelJSON struct{}

func (self *SubCompilerModelJSON) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dumpTokens bool, dumpTree bool) (*model.Model, error) {
	if dumpTokens {
		return nil, errors.New("token stream dumping isn't implemented for model JSON, sorry")
	}
	b, err := file.Body(ctx)
	if err != nil {
		return nil, r.Report(exc.WrapUnknown(exc.Location{URI: file.Path(ctx)}, err))
	}
	defer b.Close(ctx)
	content, err := io.ReadAll(&fileBodyIO{ctx: ctx, body: b})
	if err != nil {
		return nil, r.Report(exc.WrapUnknown(exc.Location{URI: file.Path(ctx)}, err))
	}
	parsed := &model.Model{}
	if err := json.Unmarshal(content, parsed); err != nil {
		return nil, r.Report(exc.Wrap(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, err))
	}
	parsed.URI = file.Path(ctx)
	if dumpTree {
		fmt.Println(parsed.String())
	}
	return parsed, nil
}

type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	if err != nil && !errors.Is(err, io.EOF) {
		return len(b), err
	}
	copy(p, b)
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
