// Package logger provides structured logging on top of zerolog.
//
// Loggers carry a service name and optional component tag. Fields are
// passed as maps so call sites stay independent of zerolog:
//
//	log := logger.WithComponent("search")
//	log.Info("lookup dispatched", logger.QueryFields("mag", 3))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console" # or json
//	  output: "stdout"  # stderr, discard or a file path
package logger
