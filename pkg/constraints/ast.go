// Package constraints parses fitter constraint files. The format is
// line-oriented VHDL-flavored text:
//
//	-- pin assignments
//	loc "led_driver" P4;
//	loc clk_buf P13;
//
// A loc statement pins the named netlist cell to the named device site.
package constraints

// File is a parsed constraint file.
type File struct {
	Statements []*Statement `parser:"@@*"`
}

// Statement is one constraint. Only loc exists today; the wrapper leaves
// room for route and timing classes later.
type Statement struct {
	Loc *Loc `parser:"@@"`
}

// Loc pins a cell to a site.
type Loc struct {
	Cell string `parser:"KwLoc @( String | Ident )"`
	Site string `parser:"@Ident Semicolon"`
}
