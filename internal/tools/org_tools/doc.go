// Package org_tools provides MCP tools backed by OneSignal organization
// endpoints: app details, the organization's app list, app create and
// update, and app API key management.
//
// These tools authenticate with an Organization API Key. The key of the app
// selected by app_key (or the current app) wins over ONESIGNAL_ORG_API_KEY.
package org_tools
