// Package logging provides structured logging utilities for msmeetings.
//
// Everything logs through log/slog. Components that talk to Microsoft Graph
// receive a Logger through their options instead of reaching for a global,
// and use the attribute helpers here so keys stay consistent:
//
//	logger := logging.WithOperation(slog.Default(), "events.create")
//	logger.Info("event created",
//	    logging.UserHash(userID),
//	    logging.EventID(ev.ID))
//
// User ids are hashed with UserHash before logging, and bearer tokens are
// only ever logged through SanitizeToken.
package logging
