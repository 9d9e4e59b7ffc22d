// Package netlist holds the in-memory model of a technology-mapped logic
// netlist as produced by synthesis, plus a loader for the Yosys JSON
// interchange format. The place-and-route engine consumes this model; it
// never sees the serialized form.
package netlist

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// Entity is anything nameable in the design. A name is the only universal
// attribute; everything else lives on the concrete types.
type Entity interface {
	Name() string
}

// Port is a top-level module port.
type Port struct {
	name      string
	Direction string
	Nets      []int
}

// Name returns the port name.
func (p *Port) Name() string { return p.name }

// CellConn identifies one connection point: a named port on a cell.
type CellConn struct {
	Cell *Cell
	Port string
}

// Cell is a single technology-mapped primitive instance. The type tag names
// the primitive kind requested (GP_IOBUF, GP_ACMP, ...).
type Cell struct {
	name string
	Type string

	Parameters map[string]string
	Attributes map[string]string

	// Connections maps a cell port to the nets bound to it, and
	// PortDirections records whether each port is an input or output.
	Connections    map[string][]*Net
	PortDirections map[string]string

	// Loc pins the cell to a named device site. Set from a LOC attribute
	// or a constraint file; empty means unconstrained.
	Loc string

	parNode *pargraph.Node
}

// Name returns the instance name.
func (c *Cell) Name() string { return c.name }

// SetPARNode binds the graph node wrapping this cell for the current run.
func (c *Cell) SetPARNode(n *pargraph.Node) { c.parNode = n }

// PARNode returns the graph node wrapping this cell, or nil outside a run.
func (c *Cell) PARNode() *pargraph.Node { return c.parNode }

// IsOutputPort reports whether the named cell port drives its nets.
func (c *Cell) IsOutputPort(port string) bool {
	return c.PortDirections[port] == "output"
}

// Net is a logical net: an unordered set of driver/load connections. Nets
// are created lazily on first reference by number and reused afterwards.
type Net struct {
	name   string
	Number int

	Driver CellConn // zero Cell if externally driven (module input)
	Loads  []CellConn
}

// Name returns the net name, or a synthetic one if synthesis left it
// unnamed.
func (n *Net) Name() string {
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("$net%d", n.Number)
}

// Module is one module in the design, with unique-named ports and cells.
type Module struct {
	name  string
	Ports map[string]*Port
	Cells map[string]*Cell

	nets map[int]*Net
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		name:  name,
		Ports: make(map[string]*Port),
		Cells: make(map[string]*Cell),
		nets:  make(map[int]*Net),
	}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Net returns the net with the given number, creating it on first use.
func (m *Module) Net(number int) *Net {
	if n, ok := m.nets[number]; ok {
		return n
	}
	n := &Net{Number: number}
	m.nets[number] = n
	return n
}

// NameNet attaches a human-readable name to a net number.
func (m *Module) NameNet(number int, name string) {
	m.Net(number).name = name
}

// AddCell creates a cell instance. Instance names must be unique.
func (m *Module) AddCell(name, typ string) (*Cell, error) {
	if _, ok := m.Cells[name]; ok {
		return nil, fmt.Errorf("netlist: attempted redeclaration of cell %q", name)
	}
	c := &Cell{
		name:           name,
		Type:           typ,
		Parameters:     make(map[string]string),
		Attributes:     make(map[string]string),
		Connections:    make(map[string][]*Net),
		PortDirections: make(map[string]string),
	}
	m.Cells[name] = c
	return c, nil
}

// AddPort creates a top-level port. Port names must be unique.
func (m *Module) AddPort(name, direction string, nets []int) (*Port, error) {
	if _, ok := m.Ports[name]; ok {
		return nil, fmt.Errorf("netlist: attempted redeclaration of module port %q", name)
	}
	p := &Port{name: name, Direction: direction, Nets: nets}
	m.Ports[name] = p
	return p, nil
}

// Connect binds a cell port to a net and updates the net's driver/load sets.
func (m *Module) Connect(c *Cell, port string, direction string, net *Net) {
	c.Connections[port] = append(c.Connections[port], net)
	c.PortDirections[port] = direction
	conn := CellConn{Cell: c, Port: port}
	if direction == "output" {
		net.Driver = conn
	} else {
		net.Loads = append(net.Loads, conn)
	}
}

// CellsSorted returns the cells ordered by instance name. Map iteration
// order is not deterministic, and PAR results must be, so every whole-module
// walk goes through this.
func (m *Module) CellsSorted() []*Cell {
	names := make([]string, 0, len(m.Cells))
	for name := range m.Cells {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Cell, len(names))
	for i, name := range names {
		out[i] = m.Cells[name]
	}
	return out
}

// NetsSorted returns the nets ordered by net number.
func (m *Module) NetsSorted() []*Net {
	numbers := make([]int, 0, len(m.nets))
	for num := range m.nets {
		numbers = append(numbers, num)
	}
	sort.Ints(numbers)
	out := make([]*Net, len(numbers))
	for i, num := range numbers {
		out[i] = m.nets[num]
	}
	return out
}

// Netlist is a loaded design: the top-level module plus any others that
// survived synthesis.
type Netlist struct {
	Top     *Module
	Modules map[string]*Module
}
