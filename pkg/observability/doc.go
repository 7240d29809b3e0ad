/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks values, so they compose with each other and with
caller hooks through LifecycleHooks.Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	eng, _ := strider.New(robot, strider.WithLifecycleHooks(hooks))
*/
package observability
