// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package cto

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/iter"
	"gopkg.ctolang.org/ctoc/internal/optional"
)

const (
	lexerCTOLookahead = 8
)

// LexerCTO implements a tokenizer for the concept definition syntax.
type LexerCTO struct {
	reporter exc.Reporter
}

func NewLexerCTO(reporter exc.Reporter) *LexerCTO {
	return &LexerCTO{reporter: reporter}
}

func (self *LexerCTO) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileCTO{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileCTO struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileCTO) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerCTOLookahead)
	return &lexerFileCTOTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		offset:   -1,
	}, nil
}

type lexerFileCTOTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
	// versionPending is set while the most recently produced token is an @
	// so that a following numeric literal is read as a version rather than
	// as a number.
	versionPending bool
	emittedEOF     bool
}

func (self *lexerFileCTOTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	tok := self.scan(ctx)
	if tok.IsPresent() {
		self.versionPending = tok.Value().Type == idl.TokenTypeAt
	}
	return tok
}

func (self *lexerFileCTOTokens) scan(ctx context.Context) optional.Optional[*idl.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		switch r {
		case 0x00:
			return self.eof() // Treat null byte as EOF as it's not allowed.
		case 0x0009, 0x0020:
			continue // Generally ignore space and tab.
		case '\n':
			return self.newLineToken("\n", 1)
		case '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken("\r\n", 2)
			}
			return self.newLineToken("\r", 1)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if self.versionPending {
				return self.readVersion(ctx, string(r))
			}
			return self.readNumber(ctx, string(r))
		case '.':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeDot, ".")
			return optional.Some(t)
		case ',':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeComma, ",")
			return optional.Some(t)
		case '{':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeCurlyOpen, "{")
			return optional.Some(t)
		case '}':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeCurlyClose, "}")
			return optional.Some(t)
		case '[':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeSquareOpen, "[")
			return optional.Some(t)
		case ']':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeSquareClose, "]")
			return optional.Some(t)
		case '@':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeAt, "@")
			return optional.Some(t)
		case '=':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeEqual, "=")
			return optional.Some(t)
		case '-':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeMinus, "-")
			return optional.Some(t)
		case '+':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypePlus, "+")
			return optional.Some(t)
		case '/':
			n := self.body.Lookahead(ctx, 1)
			if !n.IsPresent() {
				_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading regex literal"))
				return self.eof()
			}
			switch n.Value() {
			case '/':
				_ = self.next(ctx)
				return self.readCommentLine(ctx)
			case '*':
				_ = self.next(ctx)
				return self.readCommentBlock(ctx)
			default:
				return self.readRegex(ctx)
			}
		case '"', '\'':
			return self.readText(ctx, r)
		case '_':
			return self.readIdentifier(ctx, string(r))
		default:
			if unicode.IsLetter(r) {
				tok := self.readIdentifier(ctx, string(r))
				if !tok.IsPresent() {
					return self.eof()
				}
				t := tok.Value()
				switch t.Value {
				case "namespace":
					t.Type = idl.TokenTypeKeywordNamespace
				case "concept":
					t.Type = idl.TokenTypeKeywordConcept
				case "o":
					t.Type = idl.TokenTypeKeywordProperty
				case "optional":
					t.Type = idl.TokenTypeKeywordOptional
				case "default":
					t.Type = idl.TokenTypeKeywordDefault
				case "regex":
					t.Type = idl.TokenTypeKeywordRegex
				case "length":
					t.Type = idl.TokenTypeKeywordLength
				case "range":
					t.Type = idl.TokenTypeKeywordRange
				case "true":
					t.Type = idl.TokenTypeKeywordTrue
				case "false":
					t.Type = idl.TokenTypeKeywordFalse
				}
				return optional.Some(t)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, idl.TokenTypeUnknown, string(r))
			return optional.Some(t)
		}
	}
	return self.eof()
}

func (self *lexerFileCTOTokens) eof() optional.Optional[*idl.Token] {
	if self.emittedEOF {
		return optional.None[*idl.Token]()
	}
	self.emittedEOF = true
	t := newToken(self.line, self.col, self.offset+1, self.line, self.col, self.offset+1, idl.TokenTypeEOF, "")
	return optional.Some(t)
}

func (self *lexerFileCTOTokens) readIdentifier(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
			return optional.Some(t)
		}
		if unicode.IsLetter(rune(n.Value())) || unicode.IsDigit(rune(n.Value())) || n.Value() == '_' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeIdentifier, builder.String())
		return optional.Some(t)
	}
}

func (self *lexerFileCTOTokens) readCommentLine(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\r':
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		case '\n':
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

func (self *lexerFileCTOTokens) readCommentBlock(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col
	startOffset := self.offset
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading comment block"))
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeComment, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\n':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			self.newLine()
		case '\r':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 2)
			if nn.IsPresent() && nn.Value() == '\n' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
			self.newLine()
		case '*':
			nn := self.body.Lookahead(ctx, 2)
			if !nn.IsPresent() {
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(n.Value()))
			}
			if nn.Value() == '/' {
				_ = self.next(ctx)
				_ = self.next(ctx)
				t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeComment, builder.String())
				return optional.Some(t)
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

// readVersion reads the version literal that follows an @ in a namespace
// line. The value is kept verbatim, including any release tag, and is
// validated by the parser.
func (self *lexerFileCTOTokens) readVersion(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeVersion, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case '-':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			return self.readVersionRelease(ctx, &builder)
		default:
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeVersion, builder.String())
			return optional.Some(t)
		}
	}
}

func (self *lexerFileCTOTokens) readVersionRelease(ctx context.Context, builder *strings.Builder) optional.Optional[*idl.Token] {
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeVersion, builder.String())
			return optional.Some(t)
		}
		r := rune(n.Value())
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
			continue
		}
		t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), idl.TokenTypeVersion, builder.String())
		return optional.Some(t)
	}
}

// readRegex reads a /pattern/flags literal. The token value keeps the
// delimiters so the parser can split the pattern from the flags.
func (self *lexerFileCTOTokens) readRegex(ctx context.Context) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col - 1
	startOffset := self.offset - 1
	_, _ = builder.WriteString("/")
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading regex literal"))
			return self.eof()
		}
		switch n.Value() {
		case '\n', '\r':
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "regex literal is missing a closing /"))
			return optional.None[*idl.Token]()
		case '\\':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			nn := self.body.Lookahead(ctx, 1)
			if !nn.IsPresent() {
				_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading regex literal"))
				return self.eof()
			}
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(nn.Value()))
		case '/':
			_ = self.next(ctx)
			_, _ = builder.WriteRune('/')
			for {
				nn := self.body.Lookahead(ctx, 1)
				if !nn.IsPresent() || !unicode.IsLetter(rune(nn.Value())) {
					t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeRegex, builder.String())
					return optional.Some(t)
				}
				_ = self.next(ctx)
				_, _ = builder.WriteRune(rune(nn.Value()))
			}
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

// readText reads a quoted text literal, decoding escape sequences as it
// goes. Both single and double quoted forms are allowed and the closing
// quote must match the opening one.
func (self *lexerFileCTOTokens) readText(ctx context.Context, quote rune) optional.Optional[*idl.Token] {
	var builder strings.Builder
	startLine := self.line
	startCol := self.col + 1       // Adjust one to account for the leading quotation
	startOffset := self.offset + 1 // Adjust one to account for the leading quotation
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading text literal"))
			return self.eof()
		}
		switch rune(n.Value()) {
		case '\n', '\r':
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "text literal is missing a closing quote"))
			return optional.None[*idl.Token]()
		case quote:
			_ = self.next(ctx)
			t := newToken(startLine, startCol, startOffset, self.line, self.col, self.offset, idl.TokenTypeText, builder.String())
			return optional.Some(t)
		case '\\':
			_ = self.next(ctx)
			if !self.readEscape(ctx, &builder) {
				return optional.None[*idl.Token]()
			}
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

func (self *lexerFileCTOTokens) readEscape(ctx context.Context, builder *strings.Builder) bool {
	n := self.body.Lookahead(ctx, 1)
	if !n.IsPresent() {
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading text literal"))
		return false
	}
	_ = self.next(ctx)
	switch n.Value() {
	case 'n':
		_, _ = builder.WriteRune('\n')
	case 'r':
		_, _ = builder.WriteRune('\r')
	case 't':
		_, _ = builder.WriteRune('\t')
	case 'b':
		_, _ = builder.WriteRune('\b')
	case 'f':
		_, _ = builder.WriteRune('\f')
	case '\\':
		_, _ = builder.WriteRune('\\')
	case '/':
		_, _ = builder.WriteRune('/')
	case '"':
		_, _ = builder.WriteRune('"')
	case '\'':
		_, _ = builder.WriteRune('\'')
	case 'u':
		return self.readUnicodeEscape(ctx, builder)
	default:
		_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "unrecognized escape sequence in text literal"))
		return false
	}
	return true
}

func (self *lexerFileCTOTokens) readUnicodeEscape(ctx context.Context, builder *strings.Builder) bool {
	n := self.body.Lookahead(ctx, 1)
	if !n.IsPresent() || n.Value() != '{' {
		_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "unicode escape must start with {"))
		return false
	}
	_ = self.next(ctx)
	var digits strings.Builder
	for {
		nn := self.body.Lookahead(ctx, 1)
		if !nn.IsPresent() {
			_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading unicode escape"))
			return false
		}
		if nn.Value() == '}' {
			_ = self.next(ctx)
			break
		}
		_ = self.next(ctx)
		_, _ = digits.WriteRune(rune(nn.Value()))
		if digits.Len() > 6 {
			_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "unicode escape has too many digits"))
			return false
		}
	}
	if digits.Len() == 0 {
		_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "unicode escape has no digits"))
		return false
	}
	value, err := strconv.ParseUint(digits.String(), 16, 32)
	if err != nil || !utf8ValidRune(rune(value)) {
		_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "unicode escape is not a valid code point"))
		return false
	}
	_, _ = builder.WriteRune(rune(value))
	return true
}

func utf8ValidRune(r rune) bool {
	return r >= 0 && r <= unicode.MaxRune && (r < 0xD800 || r > 0xDFFF)
}

func (self *lexerFileCTOTokens) readNumber(ctx context.Context, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	tokType := idl.TokenTypeIntegerDecimal
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), tokType, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case '.':
			if tokType == idl.TokenTypeFloatDecimal {
				t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), tokType, builder.String())
				return optional.Some(t)
			}
			tokType = idl.TokenTypeFloatDecimal
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case 'e', 'E':
			tokType = idl.TokenTypeFloatDecimal
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			if !self.readExponent(ctx, &builder) {
				return optional.None[*idl.Token]()
			}
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), tokType, builder.String())
			return optional.Some(t)
		default:
			t := newTokenLineSpan(self.line, self.col, self.offset, builder.Len(), tokType, builder.String())
			return optional.Some(t)
		}
	}
}

func (self *lexerFileCTOTokens) readExponent(ctx context.Context, builder *strings.Builder) bool {
	n := self.body.Lookahead(ctx, 1)
	if !n.IsPresent() {
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading exponent of float literal"))
		return false
	}
	switch n.Value() {
	case '+', '-':
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	digits := 0
	for {
		nn := self.body.Lookahead(ctx, 1)
		if !nn.IsPresent() || nn.Value() < '0' || nn.Value() > '9' {
			if digits == 0 {
				_ = self.reporter.Report(self.exc(exc.CodeInvalidLiteral, "float literal has an empty exponent"))
				return false
			}
			return true
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(nn.Value()))
		digits = digits + 1
	}
}

func (self *lexerFileCTOTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.addCol(rune(n.Value()))
	}
	return n
}

func (self *lexerFileCTOTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: idl.Location{Line: self.line, Column: self.col, Offset: self.offset}}, code, message)
}

func (self *lexerFileCTOTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
	self.offset = self.offset + 1
}

func (self *lexerFileCTOTokens) newLineToken(v string, size int) optional.Optional[*idl.Token] {
	t := newToken(self.line, self.col-int32(size-1), self.offset-int64(size), self.line+1, 1, self.offset, idl.TokenTypeNewline, v)
	self.newLine()
	return optional.Some(t)
}

func (self *lexerFileCTOTokens) addCol(r rune) {
	self.col = self.col + 1
	self.offset = self.offset + int64(len(string(r)))
}

func (self *lexerFileCTOTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func newTokenLineSpan(line int32, col int32, offset int64, size int, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   line,
				Column: col - int32(size),
				Offset: offset - int64(size),
			},
			End: &idl.Location{
				Line:   line,
				Column: col,
				Offset: offset,
			},
		},
		Type:  kind,
		Value: value,
	}
}

func newToken(startLine int32, startCol int32, startOffset int64, endLine int32, endCol int32, endOffset int64, kind idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Span: &idl.Span{
			Start: &idl.Location{
				Line:   startLine,
				Column: startCol,
				Offset: startOffset,
			},
			End: &idl.Location{
				Line:   endLine,
				Column: endCol,
				Offset: endOffset,
			},
		},
		Type:  kind,
		Value: value,
	}
}
