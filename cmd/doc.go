// Package cmd implements the command-line interface for voicecal.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the calendar tools
//   - auth: Run the OAuth authorization flow and persist the token
//   - create: Schedule a meeting from the command line
//   - cancel: Cancel meetings matching a title and date
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
