// Package goodreads normalizes Goodreads library exports.
//
// A Goodreads export is a CSV file with one row per shelved book. ParseExport
// turns it into ImportRow values with cleaned ISBNs, parsed dates and a
// reading status mapped from the row's exclusive shelf:
//
//	rows, err := goodreads.ParseExport(file)
//	if errors.Is(err, goodreads.ErrUnparseable) {
//		// reject the upload
//	}
//
// Rows are transient. They are shown to the user for selection and discarded
// once the import finishes.
package goodreads
