// Package logging provides the logging interface shared by the ranks, the
// strategies and the application layer. It hides the backend so components
// log through one small interface, with zerolog as the default
// implementation and a stdlib adapter for callers that already hold a
// *log.Logger.
package logging
