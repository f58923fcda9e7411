//go:build !linux

package notify

// New returns a Nop notifier; desktop notifications need D-Bus.
func New() (Notifier, error) {
	return Nop{}, nil
}
