// Package logger provides structured logging for deskhub using zerolog.
//
// Loggers are scoped by service and component; role clients log under
// components such as "authclient.vendor".
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("authclient.client")
//	log.Info("refresh succeeded", logger.Fields("role", "client"))
package logger
