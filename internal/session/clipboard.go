package session

import "github.com/atotto/clipboard"

// Clipboard receives the output buffer on Copy
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the desktop clipboard
type SystemClipboard struct{}

// WriteAll implements Clipboard
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard utility was found
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}
