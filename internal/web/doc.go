package web

// Package web is the browser front end: one static page, a few JSON routes
// served through httpeasy, and a websocket channel per job.
