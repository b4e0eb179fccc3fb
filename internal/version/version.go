// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Prometheus frame metrics, YAML config via viper, PNG snapshots
// 0.2.0 - Focus-mode ellipses, moons, rings, trails, depth ordering
// 0.1.0 - Initial release: half-block terminal renderer, animated planets and starfield
