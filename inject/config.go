package inject

import (
	"github.com/bvaillant/stunt/config"
	"github.com/bvaillant/stunt/option"
)

// RegisterConfig binds name to a factory loading a *T from the environment on
// first resolution. Like any factory recipe, the loaded config is cached, so
// every dependent service sees the same instance.
func RegisterConfig[T any](registry *Registry, name string, opts ...option.Option[config.Options]) *Registry {
	return registry.RegisterFactory(name, func() (any, error) {
		return config.Load[T](opts...)
	})
}
