package app

import "context"

// NoCache is used when Redis is not configured; every read misses.
type NoCache struct{}

func (NoCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (NoCache) Set(context.Context, string, any, int) error { return nil }

func (NoCache) Del(context.Context, string) error { return nil }
