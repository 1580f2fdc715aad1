// Package ui implements an interactive terminal catalogue browser using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [PodcastListView] : Browse and filter the alphabetical catalogue
//  2. [EpisodeListView] : The selected podcast's episodes, oldest first, under a header with
//     the author, categories and average rating
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Data is loaded through the services package by commands that return messages, so Update never blocks.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
