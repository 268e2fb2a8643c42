// Package infra contains technical adapters such as file loaders
// and metrics exporters. These packages should depend only on the
// interfaces defined in the core packages.
package infra
