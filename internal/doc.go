// Package internal contains the implementation packages of formstate.
//
// # Package Organization
//
// The engine packages perform no I/O:
//
//   - pathops: Scopes and copy-on-write reads and writes of value trees
//   - validation: Built-in rules, validator results and error messages
//   - registry: Ordered validatable entries of one scope
//   - router: Applies an edit and the patches its cascade stages
//   - initqueue: Batches initial values and flushes them in one commit
//   - form: The form controller, its sources and the binding context
//   - field: Fields, groups and arrays bound to a form context
//
// The CLI side reads files and configuration:
//
//   - config: Viper-backed configuration
//   - definition: YAML field definitions and the check report
//   - watcher: Debounced fsnotify events for formstate watch
//   - errors, logging, version: Shared error types, structured logging
//     and build information
//
// # Concurrency
//
// A form serializes writes with a mutex and publishes its tree, error and
// state atomically, so reads never block. Host callbacks run after the lock
// is released.
package internal
