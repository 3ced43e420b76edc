// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package cto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/iter"
	"gopkg.ctolang.org/ctoc/internal/model"
)

// dateTimeLayouts are the accepted forms of a DateTime default value.
var dateTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999",
	time.RFC3339,
}

type ParserCTO struct {
	reporter exc.Reporter
}

func NewParserCTO(reporter exc.Reporter) *ParserCTO {
	return &ParserCTO{reporter: reporter}
}

func (self *ParserCTO) PrepareParse(ctx context.Context, f idl.LexerFile) (*parserCTOTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	// newlines and comments carry no grammatical meaning, and the EOF marker
	// is only of interest to token stream consumers. The parser treats an
	// absent token as the end of input.
	filteredTokens := iter.NewIteratorFilter(ft, idl.Filter[*idl.Token](iter.FilterFunc[*idl.Token](func(ctx context.Context, t *idl.Token) bool {
		switch t.Type {
		case idl.TokenTypeNewline, idl.TokenTypeComment, idl.TokenTypeEOF:
			return false
		default:
			return true
		}
	})))

	tokens := iter.NewLookahead(filteredTokens, 8)

	return &parserCTOTokens{
		reporter: self.reporter,
		ctx:      ctx,
		tokens:   tokens,
		uri:      f.Path(ctx),
	}, nil
}

type parserCTOTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	// this is the .Span.End of the last successfully parsed token; we keep track of it
	// so that we can give a meaningful location to "unexpected EOF" errors.
	loc    idl.Location
	tokens idl.Lookahead[*idl.Token]
}

func (p *parserCTOTokens) report(code string, message string) {
	_ = p.reporter.Report(exc.New(exc.Location{
		URI:      p.uri,
		Location: p.loc,
	}, code, message))
}

func (p *parserCTOTokens) advance() {
	maybeToken := p.tokens.Lookahead(p.ctx, 0)
	if maybeToken.IsPresent() {
		p.loc = *maybeToken.Value().Span.End
	}
	_ = p.tokens.Next(p.ctx)
}

func (p *parserCTOTokens) peekN(n uint8) *idl.Token {
	maybeToken := p.tokens.Lookahead(p.ctx, n)
	if !maybeToken.IsPresent() {
		return nil
	}
	return maybeToken.Value()
}

func (p *parserCTOTokens) peek() *idl.Token {
	return p.peekN(0)
}

// reports an error if there is no current token, or the current token isn't of the expected type
// advances on success
func (p *parserCTOTokens) expectOne(expectedType idl.TokenType) *idl.Token {
	return p.expectOneOf([]idl.TokenType{expectedType})
}

// reports an error if current token isn't one of the given expected types.
// advances on success
func (p *parserCTOTokens) expectOneOf(expectedTypes []idl.TokenType) *idl.Token {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %v)", expectedTypes))
		return nil
	}
	for _, expectedType := range expectedTypes {
		if maybeToken.Type == expectedType {
			p.advance()
			return maybeToken
		}
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting %v)", maybeToken.Value, expectedTypes))
	return nil
}

// generic application of the `= [ lower , upper ]` clause shared by the
// length and range constraints. Either bound may be omitted, but not both.
func applyOverBoundPair[N any](p *parserCTOTokens, parseValue func() *N) (*N, *N, bool) {
	if p.expectOne(idl.TokenTypeEqual) == nil {
		return nil, nil, false
	}
	if p.expectOne(idl.TokenTypeSquareOpen) == nil {
		return nil, nil, false
	}

	var lower *N
	var upper *N

	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a bound or ,)")
		return nil, nil, false
	}
	if maybeToken.Type != idl.TokenTypeComma {
		lower = parseValue()
		if lower == nil {
			return nil, nil, false
		}
	}

	if p.expectOne(idl.TokenTypeComma) == nil {
		return nil, nil, false
	}

	maybeToken = p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a bound or ])")
		return nil, nil, false
	}
	if maybeToken.Type != idl.TokenTypeSquareClose {
		upper = parseValue()
		if upper == nil {
			return nil, nil, false
		}
	}

	if p.expectOne(idl.TokenTypeSquareClose) == nil {
		return nil, nil, false
	}

	if lower == nil && upper == nil {
		p.report(exc.CodeUnexpectedToken, "at least one bound is required between [ and ]")
		return nil, nil, false
	}
	return lower, upper, true
}

// Model = Namespace { Declaration }
func (p *parserCTOTokens) ParseModel() *model.Model {
	this := model.Model{
		URI: p.uri,
	}

	namespace := p.parseNamespace()
	if namespace == nil {
		return nil
	}
	this.Namespace = *namespace

	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			break
		}
		declaration := p.parseDeclaration()
		if declaration == nil {
			return nil
		}
		this.Declarations = append(this.Declarations, declaration)
	}
	return &this
}

// Namespace = namespace QualifiedName [at Version]
func (p *parserCTOTokens) parseNamespace() *model.Namespace {
	if p.expectOne(idl.TokenTypeKeywordNamespace) == nil {
		return nil
	}
	name := p.parseQualifiedName()
	if name == nil {
		return nil
	}
	this := model.Namespace{
		Name:    *name,
		Version: model.Unversioned{},
	}
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeAt {
		p.advance()
		version := p.parseVersion()
		if version == nil {
			return nil
		}
		this.Version = version
	}
	return &this
}

// QualifiedName = identifier { dot identifier }
func (p *parserCTOTokens) parseQualifiedName() *string {
	first := p.expectOne(idl.TokenTypeIdentifier)
	if first == nil {
		return nil
	}
	var builder strings.Builder
	_, _ = builder.WriteString(first.Value)
	for {
		maybeToken := p.peek()
		if maybeToken == nil || maybeToken.Type != idl.TokenTypeDot {
			break
		}
		p.advance()
		next := p.expectOne(idl.TokenTypeIdentifier)
		if next == nil {
			return nil
		}
		_, _ = builder.WriteString(".")
		_, _ = builder.WriteString(next.Value)
	}
	name := builder.String()
	return &name
}

// Version = major dot minor dot patch [minus release]
func (p *parserCTOTokens) parseVersion() model.Version {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a version)")
		return nil
	}
	if maybeToken.Type != idl.TokenTypeVersion {
		p.report(exc.CodeInvalidVersionFormat, fmt.Sprintf("%s is not a version", maybeToken.Value))
		return nil
	}
	p.advance()
	version, err := model.ParseVersion(maybeToken.Value)
	if err != nil {
		p.report(exc.CodeInvalidVersionFormat, err.Error())
		return nil
	}
	return version
}

// Declaration = concept identifier curl_open { Property } curl_close
func (p *parserCTOTokens) parseDeclaration() *model.Declaration {
	if p.expectOne(idl.TokenTypeKeywordConcept) == nil {
		return nil
	}
	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	if p.expectOne(idl.TokenTypeCurlyOpen) == nil {
		return nil
	}

	this := model.Declaration{
		Name: name.Value,
	}
	names := map[string]bool{}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a property or })")
			return nil
		}
		if maybeToken.Type == idl.TokenTypeCurlyClose {
			break
		}
		property := p.parseProperty()
		if property == nil {
			return nil
		}
		if names[property.PropertyName()] {
			p.report(exc.CodeDuplicateName, fmt.Sprintf("concept %s already has a property named %s", this.Name, property.PropertyName()))
			return nil
		}
		names[property.PropertyName()] = true
		this.Properties = append(this.Properties, property)
	}

	if p.expectOne(idl.TokenTypeCurlyClose) == nil {
		return nil
	}
	return &this
}

// Property = property TypeName [square_open square_close] identifier { Meta }
func (p *parserCTOTokens) parseProperty() model.Property {
	if p.expectOne(idl.TokenTypeKeywordProperty) == nil {
		return nil
	}
	typeToken := p.peek()
	if typeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a property type)")
		return nil
	}
	if typeToken.Type != idl.TokenTypeIdentifier {
		p.report(exc.CodeUnknownPropertyType, fmt.Sprintf("%s is not a property type", typeToken.Value))
		return nil
	}
	p.advance()

	isArray := false
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeSquareOpen {
		p.advance()
		if p.expectOne(idl.TokenTypeSquareClose) == nil {
			return nil
		}
		isArray = true
	}

	name := p.expectOne(idl.TokenTypeIdentifier)
	if name == nil {
		return nil
	}

	switch typeToken.Value {
	case "String":
		return p.parseStringProperty(name.Value, isArray)
	case "Integer":
		return p.parseIntegerProperty(name.Value, isArray)
	case "Long":
		return p.parseLongProperty(name.Value, isArray)
	case "Double":
		return p.parseDoubleProperty(name.Value, isArray)
	case "Boolean":
		return p.parseBooleanProperty(name.Value, isArray)
	case "DateTime":
		return p.parseDateTimeProperty(name.Value, isArray)
	default:
		return p.parseReferenceProperty(typeToken.Value, name.Value, isArray)
	}
}

// StringMeta = default_clause | regex_clause | length_clause | optional
func (p *parserCTOTokens) parseStringProperty(name string, isArray bool) model.Property {
	this := model.StringProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			value := p.parseTextDefault(isArray)
			if value == nil {
				return nil
			}
			this.DefaultValue = value
		case idl.TokenTypeKeywordRegex:
			p.advance()
			if p.expectOne(idl.TokenTypeEqual) == nil {
				return nil
			}
			regexToken := p.expectOne(idl.TokenTypeRegex)
			if regexToken == nil {
				return nil
			}
			pattern, flags := splitRegex(regexToken.Value)
			this.Regex = &model.RegexValidator{
				Pattern: pattern,
				Flags:   flags,
			}
		case idl.TokenTypeKeywordLength:
			p.advance()
			lower, upper, ok := applyOverBoundPair(p, p.parseInt32)
			if !ok {
				return nil
			}
			this.Length = &model.LengthValidator{
				MinLength: lower,
				MaxLength: upper,
			}
		default:
			return &this
		}
	}
}

// IntegerMeta = default_clause | range_clause | optional
func (p *parserCTOTokens) parseIntegerProperty(name string, isArray bool) model.Property {
	this := model.IntegerProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			if !p.beginDefault(isArray) {
				return nil
			}
			if !p.checkDefaultKind("an integer", idl.TokenTypeIntegerDecimal, idl.TokenTypeMinus, idl.TokenTypePlus) {
				return nil
			}
			value := p.parseInt32()
			if value == nil {
				return nil
			}
			this.DefaultValue = value
		case idl.TokenTypeKeywordRange:
			p.advance()
			lower, upper, ok := applyOverBoundPair(p, p.parseInt32)
			if !ok {
				return nil
			}
			this.Domain = &model.IntegerDomain{
				Lower: lower,
				Upper: upper,
			}
		default:
			return &this
		}
	}
}

// LongMeta = default_clause | range_clause | optional
func (p *parserCTOTokens) parseLongProperty(name string, isArray bool) model.Property {
	this := model.LongProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			if !p.beginDefault(isArray) {
				return nil
			}
			if !p.checkDefaultKind("a long", idl.TokenTypeIntegerDecimal, idl.TokenTypeMinus, idl.TokenTypePlus) {
				return nil
			}
			value := p.parseInt64()
			if value == nil {
				return nil
			}
			this.DefaultValue = value
		case idl.TokenTypeKeywordRange:
			p.advance()
			lower, upper, ok := applyOverBoundPair(p, p.parseInt64)
			if !ok {
				return nil
			}
			this.Domain = &model.LongDomain{
				Lower: lower,
				Upper: upper,
			}
		default:
			return &this
		}
	}
}

// DoubleMeta = default_clause | range_clause | optional
func (p *parserCTOTokens) parseDoubleProperty(name string, isArray bool) model.Property {
	this := model.DoubleProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			if !p.beginDefault(isArray) {
				return nil
			}
			if !p.checkDoubleDefaultKind() {
				return nil
			}
			value := p.parseFloat64()
			if value == nil {
				return nil
			}
			this.DefaultValue = value
		case idl.TokenTypeKeywordRange:
			p.advance()
			lower, upper, ok := applyOverBoundPair(p, p.parseFloat64)
			if !ok {
				return nil
			}
			this.Domain = &model.DoubleDomain{
				Lower: lower,
				Upper: upper,
			}
		default:
			return &this
		}
	}
}

// BooleanMeta = default_clause | optional
func (p *parserCTOTokens) parseBooleanProperty(name string, isArray bool) model.Property {
	this := model.BooleanProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			if !p.beginDefault(isArray) {
				return nil
			}
			valueToken := p.peek()
			if valueToken == nil {
				p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a default value)")
				return nil
			}
			switch valueToken.Type {
			case idl.TokenTypeKeywordTrue:
				p.advance()
				value := true
				this.DefaultValue = &value
			case idl.TokenTypeKeywordFalse:
				p.advance()
				value := false
				this.DefaultValue = &value
			default:
				p.report(exc.CodeInvalidDefaultLiteral, fmt.Sprintf("default value %s is not a boolean", valueToken.Value))
				return nil
			}
		default:
			return &this
		}
	}
}

// DateTimeMeta = default_clause | optional
func (p *parserCTOTokens) parseDateTimeProperty(name string, isArray bool) model.Property {
	this := model.DateTimeProperty{
		Name:    name,
		IsArray: isArray,
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			return &this
		}
		switch maybeToken.Type {
		case idl.TokenTypeKeywordOptional:
			p.advance()
			this.IsOptional = true
		case idl.TokenTypeKeywordDefault:
			value := p.parseTextDefault(isArray)
			if value == nil {
				return nil
			}
			if !isDateTime(*value) {
				p.report(exc.CodeInvalidDefaultLiteral, fmt.Sprintf("default value %s is not an ISO-8601 datetime", *value))
				return nil
			}
			this.DefaultValue = value
		default:
			return &this
		}
	}
}

// ReferenceMeta = optional
func (p *parserCTOTokens) parseReferenceProperty(typeName string, name string, isArray bool) model.Property {
	this := model.ReferenceProperty{
		Name:     name,
		TypeName: typeName,
		IsArray:  isArray,
	}
	maybeToken := p.peek()
	if maybeToken != nil && maybeToken.Type == idl.TokenTypeKeywordOptional {
		p.advance()
		this.IsOptional = true
	}
	return &this
}

// beginDefault advances over `default =` and rejects the clause outright on
// array properties, which have no default form.
func (p *parserCTOTokens) beginDefault(isArray bool) bool {
	p.advance()
	if isArray {
		p.report(exc.CodeInvalidDefaultLiteral, "array properties do not take default values")
		return false
	}
	return p.expectOne(idl.TokenTypeEqual) != nil
}

func (p *parserCTOTokens) checkDefaultKind(kind string, expectedTypes ...idl.TokenType) bool {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a default value)")
		return false
	}
	for _, expectedType := range expectedTypes {
		if maybeToken.Type == expectedType {
			return true
		}
	}
	p.report(exc.CodeInvalidDefaultLiteral, fmt.Sprintf("default value %s is not %s literal", maybeToken.Value, kind))
	return false
}

func (p *parserCTOTokens) checkDoubleDefaultKind() bool {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a default value)")
		return false
	}
	switch maybeToken.Type {
	case idl.TokenTypeIntegerDecimal, idl.TokenTypeFloatDecimal, idl.TokenTypeMinus, idl.TokenTypePlus:
		return true
	case idl.TokenTypeIdentifier:
		if isFloatName(maybeToken.Value) {
			return true
		}
	}
	p.report(exc.CodeInvalidDefaultLiteral, fmt.Sprintf("default value %s is not a double literal", maybeToken.Value))
	return false
}

func (p *parserCTOTokens) parseTextDefault(isArray bool) *string {
	if !p.beginDefault(isArray) {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a default value)")
		return nil
	}
	if maybeToken.Type != idl.TokenTypeText {
		p.report(exc.CodeInvalidDefaultLiteral, fmt.Sprintf("default value %s is not a text literal", maybeToken.Value))
		return nil
	}
	p.advance()
	return &maybeToken.Value
}

func (p *parserCTOTokens) parseSign() (string, bool) {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a number)")
		return "", false
	}
	switch maybeToken.Type {
	case idl.TokenTypeMinus:
		p.advance()
		return "-", true
	case idl.TokenTypePlus:
		p.advance()
		return "", true
	default:
		return "", true
	}
}

func (p *parserCTOTokens) parseInt32() *int32 {
	sign, ok := p.parseSign()
	if !ok {
		return nil
	}
	token := p.expectOne(idl.TokenTypeIntegerDecimal)
	if token == nil {
		return nil
	}
	value, err := strconv.ParseInt(sign+token.Value, 10, 32)
	if err != nil {
		p.report(exc.CodeInvalidLiteral, fmt.Sprintf("%s%s is out of range for an integer", sign, token.Value))
		return nil
	}
	value32 := int32(value)
	return &value32
}

func (p *parserCTOTokens) parseInt64() *int64 {
	sign, ok := p.parseSign()
	if !ok {
		return nil
	}
	token := p.expectOne(idl.TokenTypeIntegerDecimal)
	if token == nil {
		return nil
	}
	value, err := strconv.ParseInt(sign+token.Value, 10, 64)
	if err != nil {
		p.report(exc.CodeInvalidLiteral, fmt.Sprintf("%s%s is out of range for a long", sign, token.Value))
		return nil
	}
	return &value
}

func (p *parserCTOTokens) parseFloat64() *float64 {
	sign, ok := p.parseSign()
	if !ok {
		return nil
	}
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF (expecting a number)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeIntegerDecimal, idl.TokenTypeFloatDecimal:
		p.advance()
	case idl.TokenTypeIdentifier:
		if !isFloatName(maybeToken.Value) {
			p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a number)", maybeToken.Value))
			return nil
		}
		p.advance()
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected %s (expecting a number)", maybeToken.Value))
		return nil
	}
	value, err := strconv.ParseFloat(sign+maybeToken.Value, 64)
	if err != nil {
		p.report(exc.CodeInvalidLiteral, fmt.Sprintf("%s%s is not a valid double", sign, maybeToken.Value))
		return nil
	}
	return &value
}

// isFloatName matches the spelled-out floats accepted by strconv.ParseFloat.
func isFloatName(v string) bool {
	switch strings.ToLower(v) {
	case "inf", "infinity", "nan":
		return true
	default:
		return false
	}
}

func isDateTime(v string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func splitRegex(v string) (string, string) {
	end := strings.LastIndexByte(v, '/')
	if end <= 0 {
		return v, ""
	}
	return v[1:end], v[end+1:]
}
