package nativehcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
)

// manifestSchema is the top-level shape of a "sw.hcl" package manifest: an
// optional package identity block plus one or more named target blocks.
type manifestSchema struct {
	Package *packageBlock  `hcl:"package,block"`
	Targets []*targetBlock `hcl:"target,block"`
}

type packageBlock struct {
	Path    string `hcl:"path"`
	Version string `hcl:"version"`
}

type targetBlock struct {
	Name       string          `hcl:"name,label"`
	Predefined bool            `hcl:"predefined,optional"`
	Settings   cty.Value       `hcl:"settings,optional"`
	Commands   []*commandBlock `hcl:"command,block"`
	DependsOn  []string        `hcl:"depends_on,optional"`
	Public     []string        `hcl:"public,optional"`
}

// commandBlock is one "command { ... }" entry inside a target block: an
// argv plus the file sets the command graph builder needs.
type commandBlock struct {
	Argv          []string          `hcl:"argv"`
	Env           map[string]string `hcl:"env,optional"`
	Inputs        []string          `hcl:"inputs,optional"`
	Outputs       []string          `hcl:"outputs,optional"`
	Intermediates []string          `hcl:"intermediates,optional"`
}

// decodeManifest decodes an already-parsed HCL file into manifestSchema.
func decodeManifest(file *hcl.File) (*manifestSchema, hcl.Diagnostics) {
	schema := &manifestSchema{}
	diags := gohcl.DecodeBody(file.Body, nil, schema)
	return schema, diags
}
