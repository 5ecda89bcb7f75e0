package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-scatter/pkg/core"
)

// PBRTStatement is one material-related directive of a pbrt-style
// description file
type PBRTStatement struct {
	Directive  string               // Texture, Material, MakeNamedMaterial, NamedMaterial, AttributeBegin, AttributeEnd
	Args       []string             // Quoted operands before the parameter list, unquoted
	Parameters map[string]PBRTParam // Named parameters
	Line       int                  // Line the statement starts on
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, string, texture, ...)
	Values []string // Parameter values as strings, quotes removed
}

// PBRTFile holds the material declarations of a file in file order.
// Directives that describe cameras, shapes, lights or transforms are
// counted in Skipped and otherwise ignored.
type PBRTFile struct {
	Statements []PBRTStatement
	Skipped    int
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	file           *PBRTFile
	attributeDepth int
	statementLines []string
	statementLine  int
	line           int
}

// directives that produce a statement
var materialDirectives = map[string]bool{
	"Texture":           true,
	"Material":          true,
	"MakeNamedMaterial": true,
	"NamedMaterial":     true,
}

// directives that are recognized but carry nothing a material needs
var sceneDirectives = map[string]bool{
	"Camera": true, "Film": true, "Sampler": true, "Integrator": true, "PixelFilter": true,
	"LookAt": true, "Translate": true, "Rotate": true, "Scale": true, "Transform": true,
	"ConcatTransform": true, "CoordinateSystem": true, "CoordSysTransform": true,
	"Shape": true, "LightSource": true, "AreaLightSource": true, "ReverseOrientation": true,
	"Attribute": true, "MakeNamedMedium": true, "MediumInterface": true,
	"ObjectBegin": true, "ObjectEnd": true, "ObjectInstance": true,
}

// parameter types whose values must parse as numbers, with the number of
// values each element takes
var numericTypes = map[string]int{
	"float":   1,
	"integer": 1,
	"rgb":     3,
	"color":   3,
	"point3":  3,
	"point":   3,
	"vector3": 3,
	"vector":  3,
	"normal":  3,
	"normal3": 3,
	"point2":  2,
	"vector2": 2,
}

var otherTypes = map[string]bool{
	"string":   true,
	"texture":  true,
	"bool":     true,
	"spectrum": true,
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTFile, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.file, nil
}

// LoadPBRT loads and parses a PBRT description file
func LoadPBRT(filename string) (*PBRTFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	f, err := ParsePBRT(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return f, nil
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{file: &PBRTFile{}}
}

// processAccumulatedStatement parses the pending statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	if directive := strings.Fields(fullStatement)[0]; !materialDirectives[directive] {
		p.file.Skipped++
		return nil
	}
	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("line %d: %w", p.statementLine, err)
	}
	stmt.Line = p.statementLine
	p.file.Statements = append(p.file.Statements, *stmt)
	return nil
}

// processBlock handles the directives that open or close a block
func (p *PBRTParser) processBlock(directive string) error {
	if err := p.processAccumulatedStatement(); err != nil {
		return err
	}
	switch directive {
	case "AttributeBegin":
		p.attributeDepth++
	case "AttributeEnd":
		if p.attributeDepth == 0 {
			return fmt.Errorf("line %d: AttributeEnd without AttributeBegin", p.line)
		}
		p.attributeDepth--
	default:
		// WorldBegin and WorldEnd only separate the scene options
		return nil
	}
	p.file.Statements = append(p.file.Statements, PBRTStatement{Directive: directive, Line: p.line})
	return nil
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	p.line++
	line = stripComment(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		return p.processBlock(line)
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		p.statementLine = p.line
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("line %d: unexpected continuation line: %s", p.line, line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return err
	}
	if p.attributeDepth != 0 {
		return fmt.Errorf("%d unclosed AttributeBegin", p.attributeDepth)
	}
	return nil
}

// stripComment removes a # comment that is not inside a quoted string
func stripComment(line string) string {
	inQuotes := false
	for i, char := range line {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			current.WriteRune(char)
			if inBrackets {
				continue
			}
			if inQuotes {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			inQuotes = !inQuotes
		case '[':
			if !inQuotes {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inBrackets = true
			}
			current.WriteRune(char)
		case ']':
			current.WriteRune(char)
			if !inQuotes && inBrackets {
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// parameterDecl splits a quoted `"type name"` token. It reports false for
// tokens that are plain string operands.
func parameterDecl(token string) (paramType, name string, ok bool) {
	if !isQuoted(token) {
		return "", "", false
	}
	fields := strings.Fields(strings.Trim(token, `"`))
	if len(fields) != 2 {
		return "", "", false
	}
	if _, numeric := numericTypes[fields[0]]; !numeric && !otherTypes[fields[0]] {
		return "", "", false
	}
	return fields[0], fields[1], true
}

// splitValues turns a value token, bracketed or not, into unquoted values
func splitValues(token string) []string {
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		inner := strings.TrimSpace(token[1 : len(token)-1])
		// Quoted array elements may contain spaces
		if strings.HasPrefix(inner, `"`) {
			var values []string
			for _, part := range tokenizePBRT(inner) {
				values = append(values, strings.Trim(part, `"`))
			}
			return values
		}
		return strings.Fields(inner)
	}
	return []string{strings.Trim(token, `"`)}
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format: %s", line)
	}

	stmt := &PBRTStatement{
		Directive:  parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	// Operands run until the first parameter declaration
	i := 1
	for ; i < len(parts); i++ {
		if _, _, ok := parameterDecl(parts[i]); ok {
			break
		}
		if !isQuoted(parts[i]) {
			return nil, fmt.Errorf("%s: unexpected token %s", stmt.Directive, parts[i])
		}
		stmt.Args = append(stmt.Args, strings.Trim(parts[i], `"`))
	}

	for i < len(parts) {
		paramType, name, ok := parameterDecl(parts[i])
		if !ok {
			return nil, fmt.Errorf("%s: expected a parameter declaration, got %s", stmt.Directive, parts[i])
		}
		i++
		if i >= len(parts) {
			return nil, fmt.Errorf("%s: parameter %q has no value", stmt.Directive, name)
		}
		values := splitValues(parts[i])
		i++

		if err := checkValues(paramType, values); err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", stmt.Directive, name, err)
		}
		stmt.Parameters[name] = PBRTParam{Type: paramType, Values: values}
	}

	return stmt, nil
}

// checkValues validates the values of a parameter against its type
func checkValues(paramType string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("empty value list")
	}
	n, numeric := numericTypes[paramType]
	switch paramType {
	case "bool":
		for _, v := range values {
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("invalid bool %q", v)
			}
		}
	case "spectrum":
		// Named and sampled spectra need spectral rendering
		if len(values) != 3 {
			return fmt.Errorf("only RGB triples are supported for spectrum values")
		}
		n, numeric = 3, true
	}
	if !numeric {
		return nil
	}

	if len(values)%n != 0 {
		return fmt.Errorf("%d values do not form %s elements", len(values), paramType)
	}
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
	}
	return nil
}

// Name returns the first operand: the texture or material name, or the
// kind of an anonymous Material
func (stmt *PBRTStatement) Name() string {
	if len(stmt.Args) == 0 {
		return ""
	}
	return stmt.Args[0]
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	if param.Type != "float" && param.Type != "integer" {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (core.Spectrum, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) < 3 {
		return core.Spectrum{}, false
	}
	switch param.Type {
	case "rgb", "color", "spectrum":
	default:
		return core.Spectrum{}, false
	}
	r, err1 := strconv.ParseFloat(param.Values[0], 64)
	g, err2 := strconv.ParseFloat(param.Values[1], 64)
	b, err3 := strconv.ParseFloat(param.Values[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return core.Spectrum{}, false
	}
	return core.RGB(r, g, b), true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 || param.Type != "string" {
		return "", false
	}
	return param.Values[0], true
}

// GetBoolParam extracts a bool parameter from a PBRT statement
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 || param.Type != "bool" {
		return false, false
	}
	b, err := strconv.ParseBool(param.Values[0])
	return b, err == nil
}

// GetTextureParam returns the texture name a parameter refers to
func (stmt *PBRTStatement) GetTextureParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 || param.Type != "texture" {
		return "", false
	}
	return param.Values[0], true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	directive, _, _ := strings.Cut(line, " ")
	directive, _, _ = strings.Cut(directive, "\t")
	return materialDirectives[directive] || sceneDirectives[directive]
}
