// Package pipeline describes and runs step graphs: a download followed by the
// analyzers, with serial and parallel groups.
package pipeline

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// DefaultName is the built-in pipeline run when none is named.
const DefaultName = "lichess-canned"

//go:embed builtin/*.yaml
var builtinFS embed.FS

var ErrInvalidDefinition = errors.New("invalid pipeline definition")

// Node is exactly one of a step, a serial group or a parallel group.
type Node struct {
	Name     string            `yaml:"name"`
	Step     string            `yaml:"step,omitempty"`
	Args     map[string]string `yaml:"args,omitempty"`
	Serial   []Node            `yaml:"serial,omitempty"`
	Parallel []Node            `yaml:"parallel,omitempty"`
}

type Definition struct {
	Name string `yaml:"name"`
	Doc  string `yaml:"doc"`
	Root Node   `yaml:"root"`
}

// Parse decodes and validates a YAML definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Wrap(err, "decode pipeline")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads a definition from a file.
func Load(file string) (*Definition, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read pipeline %s", file)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "pipeline %s", file)
	}
	return def, nil
}

func (d *Definition) Validate() error {
	if d.Name == "" {
		return errors.Wrap(ErrInvalidDefinition, "name is required")
	}
	return d.Root.validate(d.Name)
}

func (n *Node) validate(parent string) error {
	if n.Name == "" {
		return errors.Wrapf(ErrInvalidDefinition, "%s: node without a name", parent)
	}
	if strings.Contains(n.Name, "/") {
		return errors.Wrapf(ErrInvalidDefinition, "%s: name %q contains '/'", parent, n.Name)
	}
	p := path.Join(parent, n.Name)

	kinds := 0
	if n.Step != "" {
		kinds++
	}
	if n.Serial != nil {
		kinds++
	}
	if n.Parallel != nil {
		kinds++
	}
	if kinds != 1 {
		return errors.Wrapf(ErrInvalidDefinition, "%s: node must be exactly one of step, serial, parallel", p)
	}
	if n.Step != "" {
		return nil
	}

	children := n.Children()
	if len(children) == 0 {
		return errors.Wrapf(ErrInvalidDefinition, "%s: empty group", p)
	}
	seen := make(map[string]bool, len(children))
	for i := range children {
		if seen[children[i].Name] {
			return errors.Wrapf(ErrInvalidDefinition, "%s: duplicate child %q", p, children[i].Name)
		}
		seen[children[i].Name] = true
		if err := children[i].validate(p); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the group members; nil for a step.
func (n *Node) Children() []Node {
	if n.Serial != nil {
		return n.Serial
	}
	return n.Parallel
}

// Steps lists the step kinds a definition uses, sorted and deduplicated.
func (d *Definition) Steps() []string {
	set := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Step != "" {
			set[n.Step] = true
			return
		}
		for i := range n.Children() {
			walk(&n.Children()[i])
		}
	}
	walk(&d.Root)

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Builtins returns the embedded definitions by name.
func Builtins() (map[string]*Definition, error) {
	files, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Definition, len(files))
	for _, f := range files {
		data, err := builtinFS.ReadFile(f)
		if err != nil {
			return nil, err
		}
		def, err := Parse(data)
		if err != nil {
			return nil, errors.Wrapf(err, "builtin %s", f)
		}
		out[def.Name] = def
	}
	return out, nil
}

// Builtin returns one embedded definition. An empty name selects DefaultName.
func Builtin(name string) (*Definition, error) {
	if name == "" {
		name = DefaultName
	}
	all, err := Builtins()
	if err != nil {
		return nil, err
	}
	def, ok := all[name]
	if !ok {
		return nil, errors.Newf("unknown pipeline %q", name)
	}
	return def, nil
}
