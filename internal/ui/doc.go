// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and playing the catalog:
//  1. [TrackListView] : Browse tracks, start playback, pause and resume
//  2. [ItemListView] : Browse items and toggle likes
//  3. [PromptView] : Decide whether to keep listening after the preview limit
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Preview-limit interruptions flow through a channel from the playback controller, so the prompt appears without polling.
// A periodic tick refreshes the now-playing line and list entries so engagement counts stay current as settlements land.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, space, tab, y/n, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
