// Package onesignal is a client for the OneSignal REST API that routes each
// call to the credentials of one registered application.
//
// A Dispatcher decides which credentials a call uses. For app-scoped calls
// an explicit app key wins, then the registry's current app, then the default
// app loaded from ONESIGNAL_APP_ID/ONESIGNAL_API_KEY. Organization-scoped
// calls (apps, players/csv_export, notifications/csv_export) use the resolved
// app's organization key, falling back to ONESIGNAL_ORG_API_KEY.
//
// Client.Do performs a single request with no retries. Non-2xx responses are
// returned as *APIError with the upstream body unmodified; transport failures
// are returned as *NetworkError.
package onesignal
