// Package properties reads and writes the line-oriented key=value resource
// format used for generated registry artifacts.
//
// # Format
//
// Store emits a single leading comment line followed by one key=value line per
// entry, keys in ascending byte order. Keys and values are escaped the way
// java.util.Properties#store escapes them:
//
//   - characters outside printable ASCII become \uXXXX (uppercase hex, UTF-16
//     surrogate pairs for supplementary code points)
//   - '=', ':', '#' and '!' are backslash-escaped
//   - tab, newline, carriage return and form feed become \t, \n, \r, \f
//   - spaces are escaped everywhere in keys and only in leading position in values
//
// Unlike java.util.Properties no timestamp comment is written, so the output
// is byte-identical for identical input.
//
// # Reading
//
// Load parses an artifact back into a Properties value using
// github.com/magiconair/properties with property expansion disabled.
package properties
