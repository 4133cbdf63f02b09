// Package logging provides the leveled, categorized log facility for amanlog.
//
// A Facility formats each record into a single canonical line and fans it out
// to its sinks: a colored console stream, a combined rotating file holding
// every level and an error-only rotating file. The global level acts as a
// master filter in front of the per-sink minimum levels and can be changed at
// runtime with SetLevel.
//
// CleanOldLogs deletes files in the log directory older than a retention
// window, and Flush drains and closes the sinks before process exit.
package logging
