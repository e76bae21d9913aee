/*
Package store provides the SQLite-backed data layer for the Gather social
application. It covers user accounts and profiles, posts with optional image
attachments, comments, friend lists, and server-side login sessions.

All operations take a context.Context and run against a standard *sql.DB,
so the package works with any SQLite driver registered under database/sql.
Multi-statement writes are wrapped in transactions.
*/
package store
