// Package config loads server configuration from the environment.
//
// Values are read from an optional dotenv file first, then bound from the
// process environment. Named applications are discovered from variables of
// the form ONESIGNAL_<NAME>_APP_ID and ONESIGNAL_<NAME>_API_KEY, with optional
// ONESIGNAL_<NAME>_ORG_API_KEY and ONESIGNAL_<NAME>_APP_NAME.
package config
