// Package cmd implements the command-line interface for msmeetings.
//
// This package provides the following commands:
//   - events: Create, read, update and delete calendar events by Graph id or Zoom id
//   - serve: Start the MCP server to provide the events tools to AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Graph credentials come from the --account-id, --client-id and
// --client-secret flags or the MS_ACCOUNT_ID, MS_CLIENT_ID and
// MS_CLIENT_SECRET environment variables.
package cmd
