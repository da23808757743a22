// Package logger wraps zerolog behind a small structured-logging interface.
//
// Stages receive a Logger explicitly; the CLI initialises the global one from
// the logging section of the configuration:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("stage", "fetch")
//	log.InfoWithFields("artifact saved", map[string]interface{}{
//	    "semester":   "241",
//	    "student_id": "212-35-720",
//	})
//
// Console output is pretty-printed unless format is "json". When a file is
// configured the same events are appended there as JSON.
//
// Tests use NewNopLogger to discard output or NewTestLogger to capture it.
package logger
