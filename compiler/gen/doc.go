// Package gen generates parsers for line-oriented record formats.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Descriptor (YAML or JSON, package load)
//	        ↓
//	   NewSchema (validation)
//	        ↓
//	   Schema (immutable record model)
//	        ↓
//	   Build (walks records, drives a Backend)
//	        ↓
//	   Units (one per record, util, driver)
//	        ↓
//	   Write (format and flush in parallel)
//
// # Key Types
//
//   - Schema: the validated records, the root record and the delimiter
//   - Record: a named sequence of lines
//   - Line: a blank line, a line of fields, or a repeated block
//   - Backend: the emitters of one target language
//   - Unit: the text of one generated file
//
// # Interface Hierarchy
//
// Backends are composed of small interfaces:
//
//	Backend
//	├── Name() string
//	├── TypeMapper (native type names)
//	├── Layout (extension, comments, indentation, file names)
//	├── UnitEmitter (declarations, helpers, driver)
//	├── RoutineEmitter (reads, conversions, record calls)
//	└── ControlEmitter (blocks, loops, guards, attempts)
//
// A backend may also implement Formatter to post-process units and
// Checker to reject schemas its target language cannot express.
//
// # Repetitions
//
// A repeating line with a known count is parsed in a counted loop. A
// repetition counted with * or + has no lookahead, so each occurrence
// is attempted: the read position and the line counter are saved, and
// a parse failure restores them and ends the loop. Each attempt has one
// of three outcomes: matched, rolled back, or failed. Failures other
// than parse errors, such as I/O errors, are never rolled back.
//
// # Error Handling
//
// The package defines structured error types:
//
//   - SchemaError: invalid descriptors (wraps ErrInvalidSchema)
//   - ConfigError: invalid options (wraps ErrMissingConfig)
//   - GenerationError: format and write failures (wraps ErrGenerationFailed)
//
// Use errors.Is and errors.As, or the IsSchemaError style helpers.
package gen
