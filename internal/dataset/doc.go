// Package dataset is the ingestion core: it parses one delimited text file
// into an ordered sequence of records and publishes the result for
// concurrent readers.
//
// The package has no transport dependencies and can be driven by a web
// server, a CLI, or tests without modification.
//
// # Pipeline
//
// The pipeline is collect-then-publish:
//
//  1. [FileLoader.Load] opens the source file and layers the decode readers
//     (BOM stripping, UTF-8 sanitization, byte counting) over it.
//  2. [Reader] streams the file row by row: the header row establishes the
//     field names, every later row becomes one [Record].
//  3. The loader accumulates records and returns the complete [Dataset]
//     only once end of input is reached. Nothing downstream ever sees a
//     partial parse.
//  4. [Store] publishes the outcome exactly once. Readers poll [Store.Read]
//     and observe Unloaded, then either Loaded or Failed, never a reversal.
//
// # Row shape policy
//
// Rows with a different field count than the header are not errors: a short
// row lacks its trailing fields, a long row has the extra values discarded.
// Structural violations (an unterminated quote, a bare quote inside a
// field) abort the whole load with [ErrMalformedRow]; rows are never
// skipped. Both policies are uniform across a load.
//
// # Error classification
//
// Load failures wrap one of two sentinels: [ErrSourceUnavailable] when the
// file cannot be opened or read, [ErrMalformedRow] when its contents
// violate the format. [ErrNotReady] is not a failure: it is how
// [Snapshot.Dataset] reports that publication has not happened yet.
package dataset
