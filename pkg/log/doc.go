package log

// Package log provides a small wrapper around Go's standard library
// logging facilities. Each subsystem (api, history, a search provider)
// obtains a named logger and every emitted line carries that name, so a
// single serve process produces logs that are easy to grep apart.
//
// Key Features
//
//   - Per-service loggers via ForService(name)
//   - Automatic prefix in every line: `[name]` (example: `[history] recorded search`)
//   - Convenience level helpers: Infof, Warnf, Errorf, Debugf
//   - Debug logging enabled globally (SetGlobalDebug) or per service
//     (EnableDebugFor / DisableDebugFor)
//   - Central output writer (SetOutput) that updates existing loggers
//
// Basic Usage
//
//	hist := log.ForService("history")
//	hist.Infof("recorder started")
//	hist.Warnf("queue full, dropping entry")
//	hist.Debugf("raw entry: %v", entry) // only with debug enabled
//
// Selective Debug
//
//	// Only enable debug for the clinical_study provider.
//	log.EnableDebugFor("clinical_study")
//	log.ForService("clinical_study").Debugf("visible")
//	log.ForService("api").Debugf("NOT visible")
//
// Thread Safety
//
// All exported functions are safe for concurrent use. Internally the
// package relies on sync.Map and atomic primitives for minimal locking.
//
// Testing
//
// Tests redirect output by calling SetOutput with a bytes.Buffer,
// enabling assertions on log contents.
