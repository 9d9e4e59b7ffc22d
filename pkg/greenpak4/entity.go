// Package greenpak4 models the GreenPAK4 device family: the inventory of
// configurable sites on a part, their capability flags, the signals feeding
// their inputs, and the emission of the configuration bit image. Writing the
// image to a file and programming it over a wire are external concerns.
package greenpak4

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// Capabilities is the closed set of cross-cutting flags the DRC queries
// instead of inspecting concrete entity types.
type Capabilities struct {
	// PowerRail marks a constant rail. Rails never need a load.
	PowerRail bool

	// AnalogSource marks an entity whose output is analog-only and cannot
	// be carried by a digitally configured input buffer.
	AnalogSource bool
}

// Entity is one configurable primitive (site) on the device.
type Entity interface {
	// Description is the site name used in reports and constraints (P4,
	// ACMP1, LFOSC, ...).
	Description() string

	// TypeName groups sites of the same kind for utilization reporting.
	TypeName() string

	// Matrix returns which routing matrix the site lives on, or -1 for
	// global resources reachable from both.
	Matrix() int

	InputPorts() []string
	OutputPorts() []string

	// GetOutput returns a reference to the named output of this entity.
	GetOutput(port string) EntityOutput

	// GetInput returns the signal currently feeding the named input. An
	// unconfigured input reads as ground.
	GetInput(port string) EntityOutput

	// SetInput routes a signal into the named input.
	SetInput(port string, src EntityOutput) error

	Caps() Capabilities

	// PARNode is the device-graph node wrapping this site during a PAR
	// run, nil outside one.
	PARNode() *pargraph.Node
	SetPARNode(n *pargraph.Node)

	// CommitChanges pulls configuration out of the netlist cell placed on
	// this site. A no-op for unused sites.
	CommitChanges() error

	// emitConfig appends this site's configuration bits to the image.
	// Unexported: the entity set is closed within this package.
	emitConfig(img *ConfigImage)
}

// baseEntity carries the state common to every site.
type baseEntity struct {
	device   *Device
	self     Entity
	desc     string
	typeName string
	matrix   int

	inputs  map[string]EntityOutput
	parNode *pargraph.Node
}

func (b *baseEntity) init(device *Device, self Entity, desc, typeName string, matrix int) {
	b.device = device
	b.self = self
	b.desc = desc
	b.typeName = typeName
	b.matrix = matrix
	b.inputs = make(map[string]EntityOutput)
}

func (b *baseEntity) Description() string { return b.desc }
func (b *baseEntity) TypeName() string    { return b.typeName }
func (b *baseEntity) Matrix() int         { return b.matrix }

func (b *baseEntity) GetOutput(port string) EntityOutput {
	return EntityOutput{entity: b.self, port: port}
}

func (b *baseEntity) GetInput(port string) EntityOutput {
	if sig, ok := b.inputs[port]; ok {
		return sig
	}
	return b.device.GetGround()
}

func (b *baseEntity) SetInput(port string, src EntityOutput) error {
	for _, p := range b.self.InputPorts() {
		if p == port {
			b.inputs[port] = src
			return nil
		}
	}
	return fmt.Errorf("greenpak4: %s has no input port %q", b.desc, port)
}

func (b *baseEntity) PARNode() *pargraph.Node     { return b.parNode }
func (b *baseEntity) SetPARNode(n *pargraph.Node) { b.parNode = n }

// matedCell returns the netlist cell placed on this site, or nil.
func (b *baseEntity) matedCell() *netlist.Cell {
	if b.parNode == nil {
		return nil
	}
	mate := b.parNode.GetMate()
	if mate == nil {
		return nil
	}
	cell, _ := mate.Data().(*netlist.Cell)
	return cell
}

// IsUsed reports whether a netlist cell was placed on this site.
func (b *baseEntity) IsUsed() bool {
	return b.matedCell() != nil
}

// EntityOutput references a specific named output of a specific entity, or
// one of the two rail sentinels obtained from Device.GetPower/GetGround.
// Equality is structural: same entity and same port.
type EntityOutput struct {
	entity Entity
	port   string
}

// GetRealEntity returns the entity sourcing this signal, nil for the zero
// (unconnected) value.
func (o EntityOutput) GetRealEntity() Entity { return o.entity }

// Port returns the output port name on the sourcing entity.
func (o EntityOutput) Port() string { return o.port }

// IsPowerRail reports whether the signal is a constant rail.
func (o EntityOutput) IsPowerRail() bool {
	return o.entity != nil && o.entity.Caps().PowerRail
}

// IsAnalog reports whether the signal originates from an analog-only source.
func (o EntityOutput) IsAnalog() bool {
	return o.entity != nil && o.entity.Caps().AnalogSource
}

// GetOutputName returns a diagnostic name for the signal.
func (o EntityOutput) GetOutputName() string {
	if o.entity == nil {
		return "unconnected"
	}
	if o.entity.Caps().PowerRail || o.port == "" {
		return o.entity.Description()
	}
	return o.entity.Description() + "." + o.port
}
