// Package store holds the shortener.Repository implementations and cache decorators.
package store

import "context"

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, repo any) error {
	if p, ok := repo.(Pinger); ok {
		return p.Ping(ctx)
	}

	return nil
}

// Shutdowner is implemented by stores that hold resources to release.
type Shutdowner interface {
	Shutdown() error
}

func shutdown(repo any) error {
	if s, ok := repo.(Shutdowner); ok {
		return s.Shutdown()
	}

	return nil
}
