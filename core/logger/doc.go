// Package logger records interpreter execution events as newline delimited
// JSON and summarizes them.
package logger
