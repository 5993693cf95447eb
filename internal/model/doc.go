package model

// Package model defines domain data structures shared by the orchestrator and
// the front ends: download requests, progress events, terminal results, job
// state and playlist entries. Front ends only ever see these types.
