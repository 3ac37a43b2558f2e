// Package services defines the store interfaces used by the sync engine and implements them for
// Google Keep, iCloud Reminders and Google Tasks.
//
// # Source store
//
// [NotesStore] is implemented by [KeepService], which talks to a Google Keep HTTP gateway. The gateway
// issues OAuth2 tokens: a master token is exchanged with the refresh token grant, otherwise the email and
// password are exchanged with the password grant. The [oauth2.Client] refreshes expired tokens.
//
// # Target store
//
// [RemindersStore] is deliberately loose. Gateways and SDKs disagree on the shape of a reminders list:
// some return JSON objects keyed by guid, some return arrays, and typed SDKs return objects. The engine
// reads titles, identifiers and tasks through the accessor interfaces ([Titled], [Identified], ...)
// or through map keys, so every backend can hand back whatever it naturally produces.
//
//   - [RemindersService] talks to an iCloud Reminders gateway and returns decoded JSON.
//   - [GoogleTasksService] uses the Google Tasks API and returns typed handles.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : credentials rejected
//   - [shared.ErrAPIRequest] : gateway returned a non-2xx status
//
// and two of their own: [ErrArgumentShape] and [ErrTwoFactorRequired].
package services
