package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mgclone/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgConnected MsgKind = iota
	MsgListed
	MsgTick
)

type connectedData struct {
	source Cluster
	target Cluster
	err    error
}

type listedData struct {
	listings []models.Listing
	err      error
}

// connectedMsg is the constructor for [MsgConnected]
func connectedMsg(source, target Cluster, err error) Msg {
	return Msg{kind: MsgConnected, data: connectedData{source: source, target: target, err: err}}
}

// listedMsg is the constructor for [MsgListed]
func listedMsg(listings []models.Listing, err error) Msg {
	return Msg{kind: MsgListed, data: listedData{listings: listings, err: err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}
