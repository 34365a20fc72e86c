// Package registry holds the OneSignal app configurations known to the server.
//
// A Registry maps app keys to AppConfig values and tracks which app is
// "current". Tools that do not name an app explicitly are routed to the
// current app by the dispatcher in package onesignal.
//
// # Secrets
//
// AppConfig carries the REST API key and the optional organization API key.
// Neither is ever returned by List; use AppView for anything shown to a client.
//
// # Persistence
//
// A Registry can be backed by a Store. EnvFileStore keeps the registry in a
// dotenv file so apps added at runtime survive restarts.
package registry
