package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mitchellh/go-homedir"
	"github.com/turbot/go-kit/helpers"
	"github.com/turbot/pipe-fittings/error_helpers"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// ParseConfig decodes HCL into target
func ParseConfig[T any](configString []byte, filename string, startPos hcl.Pos, target *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error decoding %s: %w", filename, helpers.ToError(r))
		}
	}()

	// parse the config
	file, diags := hclsyntax.ParseConfig(configString, filename, startPos)
	if diags.HasErrors() {
		return error_helpers.HclDiagsToError("failed to parse config", diags)
	}
	// create an eval context exposing the environment as env.<NAME>
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envObject()},
		Functions: make(map[string]function.Function),
	}
	// decode the body into the target struct
	moreDiags := gohcl.DecodeBody(file.Body, evalCtx, target)
	diags = append(diags, moreDiags...)
	if diags.HasErrors() {
		return error_helpers.HclDiagsToError("failed to decode config", diags)
	}
	return nil
}

// ParseFile reads and decodes the HCL file at path into target
func ParseFile[T any](path string, target *T) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("error expanding config path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", expanded, err)
	}
	return ParseConfig(data, expanded, hcl.InitialPos, target)
}

func envObject() cty.Value {
	vals := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vals[k] = cty.StringVal(v)
		}
	}
	if len(vals) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vals)
}
