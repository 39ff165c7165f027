package netlist

import (
	"encoding/json"
	"io"

	"github.com/sarchlab/grhc/internal/grh"
)

// jsonGraph mirrors spec.md §6's top-level debug-artifact schema. JSON
// struct tags follow the teacher's core/program.go convention of tagging
// every wire-format field explicitly (there: `yaml:"..."`, here
// `json:"..."` since this dump is JSON, not YAML — spec.md §6 fixes the
// field names).
type jsonGraph struct {
	Symbol string      `json:"symbol"`
	IsTop  bool        `json:"isTop"`
	Aliases []string   `json:"aliases"`
	Ports   jsonPorts  `json:"ports"`
	Values  []jsonValue `json:"values"`
	Operations []jsonOperation `json:"operations"`
}

type jsonPorts struct {
	In    []string `json:"in"`
	Out   []string `json:"out"`
	Inout []string `json:"inout"`
}

type jsonValue struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Width    int    `json:"width"`
	IsSigned bool   `json:"isSigned"`
	Role     string `json:"role"`
}

type jsonOperation struct {
	Kind       string                    `json:"kind"`
	Symbol     string                    `json:"symbol"`
	Operands   []string                  `json:"operands"`
	Results    []string                  `json:"results"`
	Attributes map[string]jsonAttrValue `json:"attributes"`
}

// jsonAttrValue implements the tagged-variant encoding spec.md §6 requires:
// {"str":"..."}, {"i64":N}, {"bool":b}, {"vec":[...]}.
type jsonAttrValue struct {
	Str  *string        `json:"str,omitempty"`
	I64  *int64         `json:"i64,omitempty"`
	Bool *bool          `json:"bool,omitempty"`
	Vec  []jsonAttrScalar `json:"vec,omitempty"`
}

type jsonAttrScalar struct {
	Str  *string `json:"str,omitempty"`
	I64  *int64  `json:"i64,omitempty"`
	Bool *bool   `json:"bool,omitempty"`
}

func attrToJSON(a grh.Attr) jsonAttrValue {
	switch a.Kind() {
	case grh.AttrBool:
		v, _ := a.Bool()
		return jsonAttrValue{Bool: &v}
	case grh.AttrInt64:
		v, _ := a.Int64()
		return jsonAttrValue{I64: &v}
	case grh.AttrString:
		v, _ := a.String()
		return jsonAttrValue{Str: &v}
	case grh.AttrBoolVec:
		v, _ := a.BoolVec()
		vec := make([]jsonAttrScalar, len(v))
		for i, b := range v {
			b := b
			vec[i] = jsonAttrScalar{Bool: &b}
		}
		return jsonAttrValue{Vec: vec}
	case grh.AttrInt64Vec:
		v, _ := a.Int64Vec()
		vec := make([]jsonAttrScalar, len(v))
		for i, n := range v {
			n := n
			vec[i] = jsonAttrScalar{I64: &n}
		}
		return jsonAttrValue{Vec: vec}
	case grh.AttrStringVec:
		v, _ := a.StringVec()
		vec := make([]jsonAttrScalar, len(v))
		for i, s := range v {
			s := s
			vec[i] = jsonAttrScalar{Str: &s}
		}
		return jsonAttrValue{Vec: vec}
	default:
		return jsonAttrValue{}
	}
}

func roleName(r grh.PortRole) string {
	switch r {
	case grh.PortInput:
		return "input"
	case grh.PortOutput:
		return "output"
	case grh.PortInout:
		return "inout"
	default:
		return "none"
	}
}

func (n *Netlist) valueSymbolText(g *grh.Graph, id grh.ValueID) string {
	v := g.Value(id)
	if v == nil {
		return ""
	}
	return n.syms.Text(v.Symbol())
}

func (n *Netlist) dumpGraph(sym grh.SymbolID, g *grh.Graph) jsonGraph {
	isTop := false
	for _, t := range n.topGraphs {
		if t == sym {
			isTop = true
			break
		}
	}

	jg := jsonGraph{
		Symbol:  n.syms.Text(sym),
		IsTop:   isTop,
		Aliases: n.Aliases(sym),
	}
	for _, p := range g.InputPorts() {
		jg.Ports.In = append(jg.Ports.In, n.syms.Text(p.Name))
	}
	for _, p := range g.OutputPorts() {
		jg.Ports.Out = append(jg.Ports.Out, n.syms.Text(p.Name))
	}
	for _, p := range g.InoutPorts() {
		jg.Ports.Inout = append(jg.Ports.Inout, n.syms.Text(p.Name))
	}

	for _, v := range g.Values() {
		jg.Values = append(jg.Values, jsonValue{
			Symbol:   n.syms.Text(v.Symbol()),
			Type:     v.Type().String(),
			Width:    v.Width(),
			IsSigned: v.IsSigned(),
			Role:     roleName(v.Role()),
		})
	}

	for _, op := range g.Operations() {
		jo := jsonOperation{
			Kind:       op.Kind().String(),
			Symbol:     n.syms.Text(op.Symbol()),
			Attributes: make(map[string]jsonAttrValue),
		}
		for _, opnd := range op.Operands() {
			jo.Operands = append(jo.Operands, n.valueSymbolText(g, opnd))
		}
		for _, res := range op.Results() {
			jo.Results = append(jo.Results, n.valueSymbolText(g, res))
		}
		for _, k := range op.Attrs().Keys() {
			v, _ := op.Attrs().Get(k)
			jo.Attributes[k] = attrToJSON(v)
		}
		jg.Operations = append(jg.Operations, jo)
	}

	return jg
}

// DumpJSON renders the whole netlist as the spec.md §6 debug artifact:
// {"graphs": [...]}, in GraphOrder. This is a debugging artifact only —
// spec.md §6 "Persisted state: None" — it carries no compatibility
// contract and is not read back by any part of the core.
func (n *Netlist) DumpJSON(w io.Writer) error {
	type root struct {
		Graphs []jsonGraph `json:"graphs"`
	}
	var out root
	for _, sym := range n.order {
		out.Graphs = append(out.Graphs, n.dumpGraph(sym, n.graphs[sym]))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
