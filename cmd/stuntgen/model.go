package main

import (
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

type (
	// doubleModel is everything the template needs to render one adapter file.
	doubleModel struct {
		Package   string
		Interface string
		Imports   []importModel
		Methods   []methodModel
	}

	importModel struct {
		Alias string
		Path  string
	}

	methodModel struct {
		Name     string
		Params   []paramModel
		Results  []string
		Variadic bool
	}

	paramModel struct {
		Name string
		Type string
	}
)

// loadInterface loads the package rooted at dir and returns the named
// interface together with the package it lives in.
func loadInterface(dir, name string) (*packages.Package, *types.Interface, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load package in %s:\n\t%w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("no package found in %s", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
	}

	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return nil, nil, fmt.Errorf("no type named %s in package %s", name, pkg.PkgPath)
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, nil, fmt.Errorf("%s.%s is not an interface", pkg.PkgPath, name)
	}

	return pkg, iface, nil
}

// buildModel flattens the interface's method set into the template model,
// collecting the imports the rendered signatures need.
func buildModel(pkg *packages.Package, name string, iface *types.Interface) (*doubleModel, error) {
	collector := newImportCollector(pkg.Types)

	methods := make([]methodModel, 0, iface.NumMethods())
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		sig, ok := m.Type().(*types.Signature)
		if !ok {
			return nil, fmt.Errorf("method %s has no signature", m.Name())
		}

		method := methodModel{
			Name:     m.Name(),
			Variadic: sig.Variadic(),
		}
		for j := 0; j < sig.Params().Len(); j++ {
			param := sig.Params().At(j)
			paramName := param.Name()
			if paramName == "" || paramName == "_" {
				paramName = fmt.Sprintf("arg%d", j)
			}
			typ := param.Type()
			typStr := collector.render(typ)
			if sig.Variadic() && j == sig.Params().Len()-1 {
				// render the variadic parameter as ...E rather than []E
				slice, isSlice := typ.(*types.Slice)
				if !isSlice {
					return nil, fmt.Errorf("variadic parameter %s of %s is not a slice", paramName, m.Name())
				}
				typStr = "..." + collector.render(slice.Elem())
			}
			method.Params = append(method.Params, paramModel{Name: paramName, Type: typStr})
		}
		for j := 0; j < sig.Results().Len(); j++ {
			method.Results = append(method.Results, collector.render(sig.Results().At(j).Type()))
		}

		methods = append(methods, method)
	}

	return &doubleModel{
		Package:   pkg.Types.Name(),
		Interface: name,
		Imports:   collector.imports(),
		Methods:   methods,
	}, nil
}

// importCollector qualifies type names relative to the target package and
// remembers which foreign packages the rendered types mention.
type importCollector struct {
	local *types.Package
	seen  map[string]string // import path -> alias used
	used  map[string]bool   // aliases taken
}

func newImportCollector(local *types.Package) *importCollector {
	return &importCollector{
		local: local,
		seen:  make(map[string]string),
		used:  make(map[string]bool),
	}
}

func (c *importCollector) render(t types.Type) string {
	return types.TypeString(t, func(other *types.Package) string {
		if other == c.local {
			return ""
		}
		return c.aliasFor(other)
	})
}

func (c *importCollector) aliasFor(pkg *types.Package) string {
	if alias, known := c.seen[pkg.Path()]; known {
		return alias
	}

	alias := pkg.Name()
	for i := 2; c.used[alias]; i++ {
		alias = fmt.Sprintf("%s%d", pkg.Name(), i)
	}
	c.seen[pkg.Path()] = alias
	c.used[alias] = true

	return alias
}

func (c *importCollector) imports() []importModel {
	out := make([]importModel, 0, len(c.seen))
	for path, alias := range c.seen {
		imp := importModel{Path: path}
		// only spell out the alias when it differs from the package name,
		// which we approximate with the last path segment
		if lastSegment(path) != alias {
			imp.Alias = alias
		}
		out = append(out, imp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
