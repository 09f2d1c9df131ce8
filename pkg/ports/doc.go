// Package ports defines the interfaces between the Arbor core and its
// external collaborators: templating, tree persistence, distributed locking
// and event-address URL building. Adapters live under pkg/adapters.
package ports
