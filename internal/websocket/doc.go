// Package websocket pushes upload progress and dataset change
// notifications to browser clients. A Hub owns the client set; each
// Client runs a read pump and a write pump over one connection.
package websocket
