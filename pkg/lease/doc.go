/*
Package lease guards robot actuation behind the exclusive-control lease.

A Guard acquires the lease (refusing when the emergency stop is engaged), keeps it
alive from a background goroutine for the duration of a scoped body, and returns it
exactly once. Code that actuates the robot calls Require on its context to prove it
runs inside that scope.

	token, err := guard.Acquire(ctx)
	if err != nil {
		return err
	}
	defer guard.Release(ctx, token)

	return guard.WithKeepAlive(ctx, token, func(ctx context.Context) error {
		// commands issued here run under a live lease
		return nil
	})
*/
package lease
