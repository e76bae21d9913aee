/*
Package views provides the server-side HTML rendering layer for Gather.

Templates live on the filesystem under a configurable directory so they can
be edited post-deployment; a built-in default set is written out on first
run. Every page template extends a shared layout that renders the navigation
bar (with the active page marked), includes the flash-alert partial, and
exposes overridable content and script blocks. Refresh reparses the
template set and is safe to call concurrently with rendering.
*/
package views
