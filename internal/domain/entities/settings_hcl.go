package entities

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var settingsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "timeout"},
		{Name: "encoding"},
		{Name: "verbose"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "author"},
		{Type: "provider", LabelNames: []string{"type"}},
	},
}

// parseHCLSettings reads the HCL flavour of the config. The environment is exposed as the
// "env" object, e.g. password = env.SVN_PASSWORD.
func parseHCLSettings(data []byte, filename string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	content, diags := file.Body.Content(settingsSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": environmentObject()},
	}
	settings := &Settings{Providers: make(map[string]ProviderSettings)}

	for name, attr := range content.Attributes {
		value, valueDiags := attr.Expr.Value(evalCtx)
		if valueDiags.HasErrors() {
			return nil, fmt.Errorf("%s: %s", name, valueDiags.Error())
		}
		if err := assignTopLevel(settings, name, value); err != nil {
			return nil, err
		}
	}

	for _, block := range content.Blocks {
		attrs, attrDiags := block.Body.JustAttributes()
		if attrDiags.HasErrors() {
			return nil, fmt.Errorf("%s block: %s", block.Type, attrDiags.Error())
		}
		values := make(map[string]cty.Value, len(attrs))
		for name, attr := range attrs {
			value, valueDiags := attr.Expr.Value(evalCtx)
			if valueDiags.HasErrors() {
				return nil, fmt.Errorf("%s.%s: %s", block.Type, name, valueDiags.Error())
			}
			values[name] = value
		}

		switch block.Type {
		case "author":
			settings.Author.Name = ctyString(values["name"])
			settings.Author.Email = ctyString(values["email"])
		case "provider":
			settings.Providers[block.Labels[0]] = ProviderSettings{
				Executable:  ctyString(values["executable"]),
				Arguments:   ctyString(values["arguments"]),
				Username:    ctyString(values["username"]),
				Password:    ctyString(values["password"]),
				Environment: ctyStringMap(values["environment"]),
				Options:     ctyOptions(values["options"]),
			}
		}
	}
	return settings, nil
}

func assignTopLevel(settings *Settings, name string, value cty.Value) error {
	switch name {
	case "timeout":
		d, err := time.ParseDuration(ctyString(value))
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		settings.Timeout = d
	case "encoding":
		settings.Encoding = ctyString(value)
	case "verbose":
		if value.Type() == cty.Bool && value.IsKnown() && !value.IsNull() {
			settings.Verbose = value.True()
		}
	}
	return nil
}

func environmentObject() cty.Value {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && key != "" {
			vars[key] = cty.StringVal(value)
		}
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}

func ctyString(value cty.Value) string {
	if value.IsNull() || !value.IsKnown() {
		return ""
	}
	converted, err := convert.Convert(value, cty.String)
	if err != nil {
		return ""
	}
	return converted.AsString()
}

func ctyStringMap(value cty.Value) map[string]string {
	if value.IsNull() || !value.CanIterateElements() {
		return nil
	}
	result := make(map[string]string)
	for it := value.ElementIterator(); it.Next(); {
		k, v := it.Element()
		result[ctyString(k)] = ctyString(v)
	}
	return result
}

func ctyOptions(value cty.Value) map[string]interface{} {
	strs := ctyStringMap(value)
	if strs == nil {
		return nil
	}
	result := make(map[string]interface{}, len(strs))
	for k, v := range strs {
		result[k] = v
	}
	return result
}
