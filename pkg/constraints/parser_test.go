package constraints

import (
	"testing"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
)

func TestParseLocStatements(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("parser init failed: %v", err)
	}

	f, err := parser.ParseString(`
-- pin assignments for the demo board
loc led_driver P4;
loc "$abc$123:q" P13;
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(f.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(f.Statements))
	}
	if f.Statements[0].Loc.Cell != "led_driver" || f.Statements[0].Loc.Site != "P4" {
		t.Fatalf("first loc parsed wrong: %+v", f.Statements[0].Loc)
	}
	if f.Statements[1].Loc.Cell != `"$abc$123:q"` || f.Statements[1].Loc.Site != "P13" {
		t.Fatalf("quoted loc parsed wrong: %+v", f.Statements[1].Loc)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("parser init failed: %v", err)
	}
	if _, err := parser.ParseString(`loc missing_semicolon P4`); err == nil {
		t.Fatalf("missing semicolon accepted")
	}
}

func TestApply(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("parser init failed: %v", err)
	}
	f, err := parser.ParseString(`
loc buf P4;
loc "$abc$123:q" ACMP1;
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	mod := netlist.NewModule("top")
	buf, _ := mod.AddCell("buf", "GP_IBUF")
	weird, _ := mod.AddCell("$abc$123:q", "GP_ACMP")

	if err := Apply(f, mod); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if buf.Loc != "P4" {
		t.Fatalf("buf.Loc = %q", buf.Loc)
	}
	if weird.Loc != "ACMP1" {
		t.Fatalf("quoted cell Loc = %q", weird.Loc)
	}
}

func TestApplyUnknownCell(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("parser init failed: %v", err)
	}
	f, err := parser.ParseString(`loc nosuch P4;`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := Apply(f, netlist.NewModule("top")); err == nil {
		t.Fatalf("unknown cell accepted")
	}
}
