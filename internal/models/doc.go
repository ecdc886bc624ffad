// Package models defines the domain entities shared by the sync engine.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Playlist] : Basic playlist metadata from music services
//   - [PlaylistExport] : Playlist with complete track listing
//   - [Track] : Song metadata as reported by a playlist source
//
// 2. Sync run types:
//   - [HistoryRecord] : One successfully acquired track, as persisted in the ledger
//   - [SyncResult] : The outcome summary of one end-to-end sync run
//
// Track identity across the package is the normalized (title, primary
// artist) key from the shared package, never raw field equality.
package models
