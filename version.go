package turing

// Version is the release of the engine and its CLI.
const Version = "0.3.0"
