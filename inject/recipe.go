package inject

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type (
	// recipe knows how to build one named service.
	recipe interface {
		build(reg *Registry, tr *tracker) (any, error)

		fmt.Stringer
	}

	// constructorRecipe builds by invoking a constructor function whose
	// parameters are resolved from the registry, depth-first and
	// left-to-right per the declared dependency names.
	constructorRecipe struct {
		name string
		fn   reflect.Value
		deps []string
	}

	// factoryRecipe builds by invoking a zero-argument factory; the closure
	// captures whatever it needs.
	factoryRecipe struct {
		name    string
		factory func() (any, error)
	}

	// singletonRecipe hands out a pre-built instance.
	singletonRecipe struct {
		name     string
		instance any
	}
)

func newConstructorRecipe(name string, ctor any, deps []string) (*constructorRecipe, error) {
	t := reflect.TypeOf(ctor)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor for %q must be a function, got %T", name, ctor)
	}
	if t.NumOut() != 1 && t.NumOut() != 2 {
		return nil, fmt.Errorf("constructor for %q must return the instance, or the instance and an error", name)
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, fmt.Errorf("constructor for %q returning two values must return an error as the second one", name)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("constructor for %q must not be variadic", name)
	}
	if t.NumIn() != len(deps) {
		return nil, fmt.Errorf(
			"constructor for %q takes %d parameter(s), %d dependency name(s) declared",
			name, t.NumIn(), len(deps),
		)
	}

	return &constructorRecipe{
		name: name,
		fn:   reflect.ValueOf(ctor),
		deps: deps,
	}, nil
}

func (r *constructorRecipe) build(reg *Registry, tr *tracker) (any, error) {
	args := make([]reflect.Value, len(r.deps))
	for i, dep := range r.deps {
		resolved, err := reg.resolveTracked(dep, tr)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dependency %q of service %q:\n\t%w", dep, r.name, err)
		}
		if resolved == nil {
			args[i] = reflect.Zero(r.fn.Type().In(i))
		} else {
			args[i] = reflect.ValueOf(resolved)
		}
	}

	// panic recovery, as Call panics when the constructor itself panics
	var (
		results []reflect.Value
		callErr error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				callErr = fmt.Errorf("panic calling constructor for %q: %v", r.name, rec)
			}
		}()
		results = r.fn.Call(args)
	}()
	if callErr != nil {
		return nil, callErr
	}

	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

func (r *constructorRecipe) String() string {
	return fmt.Sprintf("constructor(%s <- [%s])", r.name, strings.Join(r.deps, ", "))
}

func (r *factoryRecipe) build(*Registry, *tracker) (any, error) {
	return r.factory()
}

func (r *factoryRecipe) String() string {
	return fmt.Sprintf("factory(%s)", r.name)
}

func (r *singletonRecipe) build(*Registry, *tracker) (any, error) {
	return r.instance, nil
}

func (r *singletonRecipe) String() string {
	return fmt.Sprintf("singleton(%s)", r.name)
}
