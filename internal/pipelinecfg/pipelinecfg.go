// Package pipelinecfg loads an ordered pass pipeline from YAML, grounded
// on the teacher's gopkg.in/yaml.v3-based LoadProgramFileFromYAML
// (core/program.go): read the whole file, unmarshal into a tagged struct,
// panic-free error propagation via a wrapped error instead of the
// teacher's panic (this is config a caller can recover from, not a
// malformed program file the teacher treats as fatal).
package pipelinecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/grhc/internal/pass"
)

// PassSpec is one pipeline entry in the YAML file.
type PassSpec struct {
	ID string `yaml:"id"`
}

// Root is the top-level YAML document shape:
//
//	stopOnError: true
//	verbosity: 1
//	passes:
//	  - id: const-inline
//	  - id: dead-code-elim
type Root struct {
	StopOnError bool       `yaml:"stopOnError"`
	Verbosity   int        `yaml:"verbosity"`
	Passes      []PassSpec `yaml:"passes"`
}

// knownPasses maps a pass id (spec.md §4.8's stable ids, usable in
// pipeline configuration per SPEC_FULL.md §4.11) to a constructor
// producing a fresh Pass value.
var knownPasses = map[string]func() pass.Pass{
	"const-inline":    func() pass.Pass { return pass.ConstInline{} },
	"dead-code-elim":  func() pass.Pass { return pass.DeadCodeElim{} },
	"redundant-elim":  func() pass.Pass { return pass.RedundantElim{} },
	"xmr-resolve":     func() pass.Pass { return pass.XMRResolve{} },
	"mem-init-check":  func() pass.Pass { return pass.MemInitCheck{} },
	"stats":           func() pass.Pass { return &pass.Stats{} },
}

// Load reads path and resolves it into a list of Pass values plus the
// stopOnError/verbosity settings, in file order. An unknown pass id is a
// load error; this never substitutes for the operations spec.md §4.8
// names, it only assembles the same pass.Pass values declaratively.
func Load(path string) (Root, []pass.Pass, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, nil, fmt.Errorf("pipelinecfg: read %s: %w", path, err)
	}

	var root Root
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Root{}, nil, fmt.Errorf("pipelinecfg: parse %s: %w", path, err)
	}

	passes := make([]pass.Pass, 0, len(root.Passes))
	for _, spec := range root.Passes {
		ctor, ok := knownPasses[spec.ID]
		if !ok {
			return Root{}, nil, fmt.Errorf("pipelinecfg: unknown pass id %q", spec.ID)
		}
		passes = append(passes, ctor())
	}

	return root, passes, nil
}

// Default returns the standard pipeline in spec.md §2's listed order,
// used when no pipeline file is given.
func Default() []pass.Pass {
	return []pass.Pass{
		pass.ConstInline{},
		pass.DeadCodeElim{},
		pass.XMRResolve{},
		pass.RedundantElim{},
		pass.MemInitCheck{},
		&pass.Stats{},
	}
}
