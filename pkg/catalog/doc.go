// Package catalog hands a resolved driver manifest to the catalog
// construction step.
//
// Building and signing the catalog itself is a platform capability this
// package does not reimplement. It prepares the inputs instead:
//
//   - [Request] carries the output path, hardware id, driver directory,
//     ordered file list and OS/OSAttr strings.
//   - [CheckFiles] confirms every listed file exists under the driver
//     directory before anything runs.
//   - [CDFBuilder] writes a MakeCat catalog definition file.
//   - [ExecBuilder] writes the definition file and runs an external catalog
//     tool (makecat by default) on it.
//   - [WriteManifest] emits the manifest as JSON for other tooling.
package catalog
