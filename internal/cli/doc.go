// Package cli provides the interactive photo uploader shell.
//
// It wires configuration, the SQLite-backed offline queue, the S3 object
// store and the upload pipeline, then runs a REPL. A background watcher
// probes the bucket and reports online/offline transitions.
//
// Commands:
//   - upload <owner> <file...>  drain the owner's pending uploads, then upload a batch
//   - single <owner> <file>     upload one photo
//   - enqueue <owner> <file...> queue photos for a later drain
//   - drain <owner>             re-upload the owner's queued photos
//   - pending <owner>           list the owner's queued entries
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
