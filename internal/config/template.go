package config

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderServerSet expands Go template expressions in the url, env and header
// values of every server, using the sprig function map. Values without
// template delimiters are returned untouched.
func RenderServerSet(set ServerSet) (ServerSet, error) {
	out := make(ServerSet, len(set))
	for name, def := range set {
		rendered, err := renderDefinition(name, def)
		if err != nil {
			return nil, err
		}
		out[name] = rendered
	}
	return out, nil
}

func renderDefinition(name string, def ServerDefinition) (ServerDefinition, error) {
	var err error

	if def.URL, err = renderValue(name+".url", def.URL); err != nil {
		return def, err
	}

	if len(def.Headers) > 0 {
		headers := make(map[string]string, len(def.Headers))
		for key, value := range def.Headers {
			if headers[key], err = renderValue(name+".headers."+key, value); err != nil {
				return def, err
			}
		}
		def.Headers = headers
	}

	if len(def.Env) > 0 {
		env := make(map[string]string, len(def.Env))
		for key, value := range def.Env {
			if env[key], err = renderValue(name+".env."+key, value); err != nil {
				return def, err
			}
		}
		def.Env = env
	}

	return def, nil
}

func renderValue(field, value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New(field).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("failed to parse template for %s: %w", field, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("failed to render template for %s: %w", field, err)
	}
	return buf.String(), nil
}
