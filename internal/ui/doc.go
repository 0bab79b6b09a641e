// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one clone session:
//  1. [ConnectView] : Edit source and target URIs, toggle ssl, connect
//  2. [LoadingView] : Spinner while connecting and listing the source
//  3. [SelectView] : Toggle collections, select all or none per database, rename
//  4. [ConfirmView] : Confirm the jobs about to run
//  5. [CloneView] : Progress bar fed by polling the run every frame
//  6. [ResultView] : Per-job outcomes
//  7. [ErrorView] : Connection or discovery failure; acknowledging drops the clients and reconnects
//
// The [Model] never blocks on cluster I/O: connecting and listing run as [tea.Cmd] functions and a running
// clone is observed through [tasks.Run.Poll] on a timer.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
