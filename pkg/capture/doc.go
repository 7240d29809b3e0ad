// Package capture pulls frames from the robot's cameras, runs them through the
// imaging pipeline and persists the results as image artifacts.
//
// Single-source captures degrade gracefully: a frame that cannot be decoded is
// saved as a raw greyscale view. Blend captures need both layers and fail as a
// whole. Persistence is best-effort in both cases.
package capture
