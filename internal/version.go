package internal

// Version is the current release of pimsleur2anki
const Version = "0.3.0"
