//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/winshl --repository.default-branch main --repository.path /

// Package winshl builds a catalog of Windows shell namespace identifiers
// (shell folders, known folders and control panel items) from the
// registries of one or more Windows installations.
//
// An Extractor scans every source of a manifest, resolves display names
// from indirect resource strings and folds what it observed into one
// definition per identifier:
//
//	sources, err := manifest.Load("sources.yaml")
//	if err != nil {
//		return err
//	}
//	extractor, err := winshl.New(winshl.WithContinueOnError(true))
//	if err != nil {
//		return err
//	}
//	result, err := extractor.Run(ctx, sources)
package winshl
