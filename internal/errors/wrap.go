package errors

import "fmt"

// Wrap prefixes err with msg, preserving the chain for errors.Is/As.
// A nil err returns nil, so it can be used inline on a return:
//
//	return errors.Wrap(st.SaveContainer(ctx, c), "persist container")
//
// Sentinel checks keep working through the wrap:
//
//	if errors.Is(err, errors.ErrStorage) { ... }
//
// Wrap at package boundaries only; re-wrapping at every call site buries
// the sentinel under redundant prefixes.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted prefix, for context that needs
// interpolated values:
//
//	return errors.Wrapf(err, "apply update to %s", ticketID)
//
// Like Wrap, it passes nil through and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}
