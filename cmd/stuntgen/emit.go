package main

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
)

const (
	stuntImportPath  = "github.com/bvaillant/stunt"
	optionImportPath = "github.com/bvaillant/stunt/option"
)

var fileTemplate = template.Must(template.New("double").Parse(`// Code generated by stuntgen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .AllImports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)

// {{.Interface}}Double implements {{.Interface}} by delegating every call to
// the underlying stunt engine.
type {{.Interface}}Double struct {
	*stunt.Double
}

var _ {{.Interface}} = {{.Interface}}Double{}

{{range .Kinds}}
// New{{$.Interface}}{{.}} builds a {{.}} double for {{$.Interface}}.
func New{{$.Interface}}{{.}}(opts ...option.Option[stunt.Options]) {{$.Interface}}Double {
	return {{$.Interface}}Double{stunt.New{{.}}[{{$.Interface}}](opts...)}
}
{{end}}
{{range .RenderedMethods}}
func (d {{$.Interface}}Double) {{.Signature}} {
{{.Body}}}
{{end}}`))

type (
	renderedMethod struct {
		Signature string
		Body      string
	}

	templateData struct {
		Package         string
		Interface       string
		AllImports      []importModel
		Kinds           []string
		RenderedMethods []renderedMethod
	}
)

// emit renders the adapter file for the given model and gofmts it.
func emit(model *doubleModel) ([]byte, error) {
	data := templateData{
		Package:   model.Package,
		Interface: model.Interface,
		Kinds:     []string{"Dummy", "Stub", "Spy", "Mock", "Fake"},
	}

	data.AllImports = append(data.AllImports,
		importModel{Path: stuntImportPath},
		importModel{Path: optionImportPath},
	)
	data.AllImports = append(data.AllImports, model.Imports...)

	for _, m := range model.Methods {
		data.RenderedMethods = append(data.RenderedMethods, renderMethod(m))
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render adapter:\n\t%w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code does not parse:\n\t%w", err)
	}

	return formatted, nil
}

func renderMethod(m methodModel) renderedMethod {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name + " " + p.Type
	}

	signature := fmt.Sprintf("%s(%s)", m.Name, strings.Join(params, ", "))
	switch len(m.Results) {
	case 0:
	case 1:
		signature += " " + m.Results[0]
	default:
		signature += " (" + strings.Join(m.Results, ", ") + ")"
	}

	var body strings.Builder
	invoke := renderInvoke(m, &body)
	if len(m.Results) == 0 {
		body.WriteString(fmt.Sprintf("\t%s\n", invoke))
		return renderedMethod{Signature: signature, Body: body.String()}
	}

	body.WriteString(fmt.Sprintf("\tout := %s\n", invoke))
	names := make([]string, len(m.Results))
	for i, res := range m.Results {
		names[i] = fmt.Sprintf("r%d", i)
		body.WriteString(fmt.Sprintf("\t%s, _ := out[%d].(%s)\n", names[i], i, res))
	}
	body.WriteString(fmt.Sprintf("\treturn %s\n", strings.Join(names, ", ")))

	return renderedMethod{Signature: signature, Body: body.String()}
}

// renderInvoke yields the Invoke call expression; for variadic methods it
// first writes the flattening of the variadic arguments into the body.
func renderInvoke(m methodModel, body *strings.Builder) string {
	if !m.Variadic {
		args := make([]string, 0, len(m.Params)+1)
		args = append(args, fmt.Sprintf("%q", m.Name))
		for _, p := range m.Params {
			args = append(args, p.Name)
		}
		return fmt.Sprintf("d.Invoke(%s)", strings.Join(args, ", "))
	}

	fixed := make([]string, 0, len(m.Params)-1)
	for _, p := range m.Params[:len(m.Params)-1] {
		fixed = append(fixed, p.Name)
	}
	last := m.Params[len(m.Params)-1]

	body.WriteString(fmt.Sprintf("\tcallArgs := []any{%s}\n", strings.Join(fixed, ", ")))
	body.WriteString(fmt.Sprintf("\tfor _, v := range %s {\n\t\tcallArgs = append(callArgs, v)\n\t}\n", last.Name))

	return fmt.Sprintf("d.Invoke(%q, callArgs...)", m.Name)
}
