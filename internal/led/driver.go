package led

import "errors"

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Multi fans a frame out to several drivers. Every driver sees every frame even
// when an earlier one fails.
type Multi []Driver

func (m Multi) Write(rgb []byte) error {
	var errs []error
	for _, d := range m {
		if err := d.Write(rgb); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, d := range m {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
