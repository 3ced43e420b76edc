// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.ctolang.org/ctoc/internal/model"
	"gopkg.ctolang.org/ctoc/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindCTO
	FileKindModelJSON
)

func (k FileKind) String() string {
	switch k {
	case FileKindCTO:
		return "cto"
	case FileKindModelJSON:
		return "model-json"
	case FileKindNone:
		return "none"
	default:
		return fmt.Sprintf("unkown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files      []string
	DumpTokens bool
	DumpTree   bool
}

type CompileResponse struct {
	Models []*model.Model
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Parser interface {
	Parse(ctx context.Context, f LexerFile) (*model.Model, error)
}

type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Span struct {
	Start *Location
	End   *Location
}

type Token struct {
	Span  *Span
	Type  TokenType
	Value string
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

type TokenType uint16

const (
	TokenTypeUnknown          TokenType = 0
	TokenTypeIdentifier       TokenType = 1
	TokenTypeIntegerDecimal   TokenType = 2
	TokenTypeFloatDecimal     TokenType = 3
	TokenTypeText             TokenType = 4
	TokenTypeRegex            TokenType = 5
	TokenTypeVersion          TokenType = 6
	TokenTypeComment          TokenType = 7
	TokenTypeNewline          TokenType = 8
	TokenTypeCurlyOpen        TokenType = 9
	TokenTypeCurlyClose       TokenType = 10
	TokenTypeSquareOpen       TokenType = 11
	TokenTypeSquareClose      TokenType = 12
	TokenTypeComma            TokenType = 13
	TokenTypeDot              TokenType = 14
	TokenTypeAt               TokenType = 15
	TokenTypeEqual            TokenType = 16
	TokenTypeMinus            TokenType = 17
	TokenTypePlus             TokenType = 18
	TokenTypeKeywordNamespace TokenType = 19
	TokenTypeKeywordConcept   TokenType = 20
	TokenTypeKeywordProperty  TokenType = 21
	TokenTypeKeywordOptional  TokenType = 22
	TokenTypeKeywordDefault   TokenType = 23
	TokenTypeKeywordRegex     TokenType = 24
	TokenTypeKeywordLength    TokenType = 25
	TokenTypeKeywordRange     TokenType = 26
	TokenTypeKeywordTrue      TokenType = 27
	TokenTypeKeywordFalse     TokenType = 28
	TokenTypeEOF              TokenType = 29
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeIdentifier:
		return "Identifier"
	case TokenTypeIntegerDecimal:
		return "IntegerDecimal"
	case TokenTypeFloatDecimal:
		return "FloatDecimal"
	case TokenTypeText:
		return "Text"
	case TokenTypeRegex:
		return "Regex"
	case TokenTypeVersion:
		return "Version"
	case TokenTypeComment:
		return "Comment"
	case TokenTypeNewline:
		return "Newline"
	case TokenTypeCurlyOpen:
		return "CurlyOpen"
	case TokenTypeCurlyClose:
		return "CurlyClose"
	case TokenTypeSquareOpen:
		return "SquareOpen"
	case TokenTypeSquareClose:
		return "SquareClose"
	case TokenTypeComma:
		return "Comma"
	case TokenTypeDot:
		return "Dot"
	case TokenTypeAt:
		return "At"
	case TokenTypeEqual:
		return "Equal"
	case TokenTypeMinus:
		return "Minus"
	case TokenTypePlus:
		return "Plus"
	case TokenTypeKeywordNamespace:
		return "KeywordNamespace"
	case TokenTypeKeywordConcept:
		return "KeywordConcept"
	case TokenTypeKeywordProperty:
		return "KeywordProperty"
	case TokenTypeKeywordOptional:
		return "KeywordOptional"
	case TokenTypeKeywordDefault:
		return "KeywordDefault"
	case TokenTypeKeywordRegex:
		return "KeywordRegex"
	case TokenTypeKeywordLength:
		return "KeywordLength"
	case TokenTypeKeywordRange:
		return "KeywordRange"
	case TokenTypeKeywordTrue:
		return "KeywordTrue"
	case TokenTypeKeywordFalse:
		return "KeywordFalse"
	case TokenTypeEOF:
		return "EOF"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}
