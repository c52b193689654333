// Package api handles incoming HTTP requests, request parsing and response
// formatting. It adapts the JSON and multipart API of the marketplace to
// the services in internal/service.
//
// Successful responses use the envelope {success, message, count, data};
// failures use {success: false, message, trace_id}. MapErrorToStatusCode
// and GetSafeErrorMessage translate service errors so that internal
// details never reach clients.
package api
