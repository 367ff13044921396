// Package domain defines the core business entities and errors: calendar
// events and series, scope requests, extracted intents, and processing jobs.
package domain
