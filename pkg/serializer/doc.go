// Package serializer writes diagnostic reports to files or stdout in
// machine-readable formats.
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatJSON, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, report); err != nil {
//		return err
//	}
package serializer
