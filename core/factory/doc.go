// Package factory provides a small generic registry used to instantiate
// engine strategies selected by name in configuration. Factories capture
// their collaborators at registration time and return the concrete
// implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[io.Reader]()
//	reg.Register("file", func() (io.Reader, error) {
//	    return os.Open(path)
//	})
//	r, err := reg.Create("file")
package factory
