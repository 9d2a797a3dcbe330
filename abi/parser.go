package abi

import (
	"encoding/json"
	"strings"

	"github.com/cairn-systems/starkgo/core/crypto"
	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/pkg/errors"
)

// ErrInvalidAbi marks a contract interface description that cannot be
// loaded: bad JSON, duplicate or unknown type names, or cyclic structs.
var ErrInvalidAbi = errors.New("invalid abi")

// Function is one callable entry point with its resolved input and output
// types and precomputed selector.
type Function struct {
	Name     string
	Selector *felt.Felt
	Inputs   []Field
	Outputs  []Type
}

// EncodeInputs flattens the argument values against the declared inputs.
func (f *Function) EncodeInputs(values []Value) ([]*felt.Felt, error) {
	if len(values) != len(f.Inputs) {
		return nil, &EncodingError{
			Type:   f.Name,
			Reason: "wrong arity: " + f.Name + " takes a different number of arguments",
		}
	}
	var out []*felt.Felt
	for i := range f.Inputs {
		encoded, err := Encode(&values[i], &f.Inputs[i].Type)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}
	return out, nil
}

// DecodeOutputs decodes a contiguous return buffer into one value per
// declared output. Trailing data is rejected.
func (f *Function) DecodeOutputs(data []*felt.Felt) ([]Value, error) {
	values := make([]Value, 0, len(f.Outputs))
	rest := data
	for i := range f.Outputs {
		value, remaining, err := Decode(rest, &f.Outputs[i])
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		rest = remaining
	}
	if len(rest) != 0 {
		return nil, errors.Wrapf(ErrMalformedAbiData, "decoding outputs of %s: %d trailing elements", f.Name, len(rest))
	}
	return values, nil
}

// Abi is a parsed contract interface description.
type Abi struct {
	structs   map[string]Type
	functions map[string]*Function
}

// Function looks up an entry point by name.
func (a *Abi) Function(name string) (*Function, bool) {
	f, ok := a.functions[name]
	return f, ok
}

type jsonParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonOutput struct {
	Type string `json:"type"`
}

type jsonEntry struct {
	Type    string       `json:"type"`
	Name    string       `json:"name"`
	Members []jsonParam  `json:"members"`
	Inputs  []jsonParam  `json:"inputs"`
	Outputs []jsonOutput `json:"outputs"`
	Items   []jsonEntry  `json:"items"`
}

// Parse loads a contract's JSON ABI. Function entries may appear at the top
// level or nested in interface entries; entries of unknown type are skipped.
func Parse(data []byte) (*Abi, error) {
	var entries []jsonEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(ErrInvalidAbi, err.Error())
	}

	p := &parser{
		rawStructs: make(map[string][]jsonParam),
		abi: &Abi{
			structs:   make(map[string]Type),
			functions: make(map[string]*Function),
		},
	}

	var functions []jsonEntry
	var collect func(entries []jsonEntry) error
	collect = func(entries []jsonEntry) error {
		for _, entry := range entries {
			switch entry.Type {
			case "struct":
				if _, ok := p.rawStructs[entry.Name]; ok {
					return errors.Wrapf(ErrInvalidAbi, "struct %q defined twice", entry.Name)
				}
				p.rawStructs[entry.Name] = entry.Members
			case "function", "constructor", "l1_handler":
				functions = append(functions, entry)
			case "interface":
				if err := collect(entry.Items); err != nil {
					return err
				}
			default:
				// events, impls and unknown future entries are not needed for
				// call encoding
			}
		}
		return nil
	}
	if err := collect(entries); err != nil {
		return nil, err
	}

	for _, fn := range functions {
		if _, ok := p.abi.functions[fn.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidAbi, "function %q defined twice", fn.Name)
		}
		parsed, err := p.parseFunction(fn)
		if err != nil {
			return nil, err
		}
		p.abi.functions[fn.Name] = parsed
	}
	return p.abi, nil
}

type parser struct {
	rawStructs map[string][]jsonParam
	abi        *Abi
	resolving  []string
}

func (p *parser) parseFunction(entry jsonEntry) (*Function, error) {
	fn := &Function{Name: entry.Name, Selector: crypto.Selector(entry.Name)}
	for _, input := range entry.Inputs {
		inputType, err := p.parseTypeString(input.Type)
		if err != nil {
			return nil, err
		}
		fn.Inputs = append(fn.Inputs, Field{Name: input.Name, Type: inputType})
	}
	for _, output := range entry.Outputs {
		outputType, err := p.parseTypeString(output.Type)
		if err != nil {
			return nil, err
		}
		fn.Outputs = append(fn.Outputs, outputType)
	}
	return fn, nil
}

// parseTypeString resolves one cairo type name to a Type. Generic arrays,
// spans and options recurse on the bracketed parameter; parenthesised lists
// become tuples; anything else must name a defined struct.
func (p *parser) parseTypeString(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "felt" || s == "felt252" || s == "core::felt252":
		return FeltType(), nil
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		members, err := p.parseTupleMembers(s[1 : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		return TupleOf(members...), nil
	}

	if inner, ok := genericParam(s, "core::array::Array", "core::array::Span", "Array", "Span"); ok {
		elem, err := p.parseTypeString(inner)
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem), nil
	}
	if inner, ok := genericParam(s, "core::option::Option", "Option"); ok {
		elem, err := p.parseTypeString(inner)
		if err != nil {
			return Type{}, err
		}
		return OptionOf(elem), nil
	}
	return p.resolveStruct(s)
}

func (p *parser) parseTupleMembers(s string) ([]Type, error) {
	var members []Type
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				member, err := p.parseTypeString(s[start:i])
				if err != nil {
					return nil, err
				}
				members = append(members, member)
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		member, err := p.parseTypeString(s[start:])
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// genericParam extracts T from prefix::<T> for any of the given prefixes.
func genericParam(s string, prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		for _, open := range []string{"::<", "<"} {
			if strings.HasPrefix(s, prefix+open) && strings.HasSuffix(s, ">") {
				return s[len(prefix)+len(open) : len(s)-1], true
			}
		}
	}
	return "", false
}

func (p *parser) resolveStruct(name string) (Type, error) {
	if resolved, ok := p.abi.structs[name]; ok {
		return resolved, nil
	}
	members, ok := p.rawStructs[name]
	if !ok {
		return Type{}, errors.Wrapf(ErrInvalidAbi, "unknown type %q", name)
	}
	for _, visiting := range p.resolving {
		if visiting == name {
			return Type{}, errors.Wrapf(ErrInvalidAbi, "cycle detected in struct %q", name)
		}
	}

	p.resolving = append(p.resolving, name)
	defer func() { p.resolving = p.resolving[:len(p.resolving)-1] }()

	fields := make([]Field, 0, len(members))
	for _, member := range members {
		memberType, err := p.parseTypeString(member.Type)
		if err != nil {
			return Type{}, err
		}
		fields = append(fields, Field{Name: member.Name, Type: memberType})
	}
	resolved := StructOf(name, fields...)
	p.abi.structs[name] = resolved
	return resolved, nil
}
