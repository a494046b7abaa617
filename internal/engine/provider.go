package engine

// Provider is implemented by built-in facet packages. Register wires the
// package's hooks and contracts onto a container; it is how the application
// assembles its compiled-in facet set.
type Provider interface {
	Register(c *Container) error
}
