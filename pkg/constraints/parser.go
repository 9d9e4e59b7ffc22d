package constraints

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
)

// constraintLexer tokenizes constraint files. Cell names may be quoted
// because synthesis tools emit instance names with $ and : in them.
var constraintLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},
	{Name: "KwLoc", Pattern: `(?i)\bLOC\b`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[A-Za-z0-9_$.\[\]:]+`},
})

// Parser parses constraint files.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds a constraint file parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(constraintLexer),
		participle.Elide("Comment", "Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("constraints: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a constraint file from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("constraints: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses a constraint file from a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("constraints: parse error: %w", err)
	}
	return f, nil
}

// ParseFile parses a constraint file from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("constraints: failed to open file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Apply binds the parsed constraints to the module's cells. Unknown cell
// names are user errors; site validity is checked later during graph build,
// where the device inventory is in hand.
func Apply(f *File, mod *netlist.Module) error {
	for _, stmt := range f.Statements {
		if stmt.Loc == nil {
			continue
		}
		name := stmt.Loc.Cell
		if strings.HasPrefix(name, `"`) {
			unquoted, err := strconv.Unquote(name)
			if err != nil {
				return fmt.Errorf("constraints: malformed cell name %s", name)
			}
			name = unquoted
		}
		cell, ok := mod.Cells[name]
		if !ok {
			return fmt.Errorf("constraints: loc names cell %q, which is not in module %q", name, mod.Name())
		}
		cell.Loc = stmt.Loc.Site
	}
	return nil
}
