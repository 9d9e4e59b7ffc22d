package netlist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Yosys JSON wire format. Connection bits are either net numbers or the
// constant strings "0", "1", "x"; we only bind numbered nets here, constants
// are expressed as GP_VDD/GP_VSS cells by the synthesis flow.
type jsonNetlist struct {
	Creator string                `json:"creator"`
	Modules map[string]jsonModule `json:"modules"`
}

type jsonModule struct {
	Ports    map[string]jsonPort    `json:"ports"`
	Cells    map[string]jsonCell    `json:"cells"`
	NetNames map[string]jsonNetName `json:"netnames"`
}

type jsonPort struct {
	Direction string            `json:"direction"`
	Bits      []json.RawMessage `json:"bits"`
}

type jsonCell struct {
	Type           string                       `json:"type"`
	Parameters     map[string]json.RawMessage   `json:"parameters"`
	Attributes     map[string]json.RawMessage   `json:"attributes"`
	PortDirections map[string]string            `json:"port_directions"`
	Connections    map[string][]json.RawMessage `json:"connections"`
}

type jsonNetName struct {
	Bits []json.RawMessage `json:"bits"`
}

// Load parses a Yosys JSON netlist from a reader. The module named top, or
// the only module present, becomes the top-level module.
func Load(r io.Reader, top string) (*Netlist, error) {
	var raw jsonNetlist
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("netlist: malformed JSON: %w", err)
	}
	if len(raw.Modules) == 0 {
		return nil, fmt.Errorf("netlist: no modules in design")
	}

	nl := &Netlist{Modules: make(map[string]*Module)}

	names := make([]string, 0, len(raw.Modules))
	for name := range raw.Modules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mod, err := loadModule(name, raw.Modules[name])
		if err != nil {
			return nil, err
		}
		nl.Modules[name] = mod
	}

	if top != "" {
		mod, ok := nl.Modules[top]
		if !ok {
			return nil, fmt.Errorf("netlist: top module %q not found in design", top)
		}
		nl.Top = mod
	} else if len(names) == 1 {
		nl.Top = nl.Modules[names[0]]
	} else {
		return nil, fmt.Errorf("netlist: design has %d modules, top must be named explicitly", len(names))
	}

	return nl, nil
}

// LoadFile parses a Yosys JSON netlist from a file path.
func LoadFile(path, top string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netlist: %w", err)
	}
	defer f.Close()
	return Load(f, top)
}

func loadModule(name string, raw jsonModule) (*Module, error) {
	m := NewModule(name)

	portNames := sortedKeys(raw.Ports)
	for _, pname := range portNames {
		p := raw.Ports[pname]
		nets, err := bitNumbers(p.Bits)
		if err != nil {
			return nil, fmt.Errorf("netlist: port %q: %w", pname, err)
		}
		if _, err := m.AddPort(pname, p.Direction, nets); err != nil {
			return nil, err
		}
	}

	cellNames := sortedKeys(raw.Cells)
	for _, cname := range cellNames {
		rc := raw.Cells[cname]
		cell, err := m.AddCell(cname, rc.Type)
		if err != nil {
			return nil, err
		}
		for pname, v := range rc.Parameters {
			cell.Parameters[pname] = rawToString(v)
		}
		for aname, v := range rc.Attributes {
			cell.Attributes[aname] = rawToString(v)
		}
		if loc, ok := cell.Attributes["LOC"]; ok {
			cell.Loc = loc
		}

		connNames := sortedKeys(rc.Connections)
		for _, pname := range connNames {
			dir := rc.PortDirections[pname]
			if dir == "" {
				return nil, fmt.Errorf("netlist: cell %q port %q has no direction", cname, pname)
			}
			nums, err := bitNumbers(rc.Connections[pname])
			if err != nil {
				return nil, fmt.Errorf("netlist: cell %q port %q: %w", cname, pname, err)
			}
			for _, num := range nums {
				m.Connect(cell, pname, dir, m.Net(num))
			}
		}
	}

	netNames := sortedKeys(raw.NetNames)
	for _, nname := range netNames {
		nums, err := bitNumbers(raw.NetNames[nname].Bits)
		if err != nil {
			return nil, fmt.Errorf("netlist: netname %q: %w", nname, err)
		}
		for _, num := range nums {
			m.NameNet(num, nname)
		}
	}

	return m, nil
}

// bitNumbers extracts the numeric net references from a bits array,
// skipping constant bits ("0", "1", "x").
func bitNumbers(bits []json.RawMessage) ([]int, error) {
	var out []int
	for _, b := range bits {
		var num int
		if err := json.Unmarshal(b, &num); err == nil {
			out = append(out, num)
			continue
		}
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("bit is neither a net number nor a constant")
		}
	}
	return out, nil
}

// rawToString flattens a parameter/attribute value. Yosys emits either a
// string or a number.
func rawToString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
