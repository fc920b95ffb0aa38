package routeops

import (
	"context"
	"fmt"
)

// Invalidate clears the named route's cache and refetches every recorded
// invocation, writing fresh entries back. Refetches run sequentially; the
// first failure aborts the rest and is returned, leaving already-refetched
// entries in place.
func (c *Client) Invalidate(ctx context.Context, routeName string) error {
	if _, ok := c.routes[routeName]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, routeName)
	}

	mgr := c.manager(routeName)
	if mgr == nil {
		return nil
	}

	if err := mgr.Clear(ctx); err != nil {
		return err
	}

	for key, refetch := range c.recordedRefetches(routeName) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := refetch(ctx); err != nil {
			return fmt.Errorf("routeops: refetch %q: %w", key, err)
		}
	}
	return nil
}

// InvalidateAll invalidates every route's cache in turn. The first failure
// aborts the remaining routes.
func (c *Client) InvalidateAll(ctx context.Context) error {
	for name := range c.managers {
		if err := c.Invalidate(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// OnFocus refetches every stale entry once across all routes. Intended to be
// called when the embedding application regains user attention. It is a
// no-op unless Cache.RefetchOnFocus was configured.
func (c *Client) OnFocus(ctx context.Context) error {
	if !c.cacheCfg.RefetchOnFocus {
		return nil
	}

	for name, mgr := range c.managers {
		recorded := c.recordedRefetches(name)
		err := mgr.RefetchStale(ctx, func(ctx context.Context, key string) error {
			refetch, ok := recorded[key]
			if !ok {
				// Entry written by another process or surviving from a
				// previous run of the file substrate; nothing to replay.
				return nil
			}
			return refetch(ctx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
