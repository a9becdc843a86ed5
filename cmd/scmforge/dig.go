package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/scmforge/internal"
)

// resolve builds a fresh container and pulls a single value out of it.
func resolve[T any]() T {
	container := dig.New()
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	var value T
	if err := container.Invoke(func(resolved T) {
		value = resolved
	}); err != nil {
		panic(err)
	}
	return value
}

func injectAppContext() *internal.AppInternal {
	return resolve[*internal.AppInternal]()
}
