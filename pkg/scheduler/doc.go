// Package scheduler runs the bot's background jobs, such as refreshing the
// recipe collection, at fixed intervals until it is stopped.
package scheduler
