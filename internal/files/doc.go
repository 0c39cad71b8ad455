// Package files discovers sales exports on disk.
//
// Discovery lists the .csv, .tsv and .xlsx files directly inside a
// directory, skipping office lock files and empty files, and can hand them
// to the ingestion layer as sources:
//
//	sources, err := files.NewDiscovery(baseDir).FindSources("exports")
package files
