// Package app contains the core application logic. It defines the main App
// struct and its configuration, loads an inventory from the configured
// source and renders it, decoupled from any specific entrypoint like a CLI.
package app
