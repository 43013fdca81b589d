package state

import (
	"fmt"
	"time"

	"golang.org/x/text/encoding/ianaindex"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// ForceZipCodePage sets encoding used for all non UTF-8 file names in
// processed archives. Since zip "standard" does not define file name encoding
// we may need to force archaic code page for old archives. Name is IANA
// character set name, empty name resets it.
func (e *LocalEnv) ForceZipCodePage(name string) error {
	if len(name) == 0 {
		e.CodePage = nil
		return nil
	}
	cp, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if cp == nil {
		return fmt.Errorf("character set %q is not supported", name)
	}
	e.CodePage = cp
	return nil
}

// CodePageName returns IANA name of the forced code page, if any.
func (e *LocalEnv) CodePageName() string {
	if e.CodePage == nil {
		return ""
	}
	n, _ := ianaindex.IANA.Name(e.CodePage)
	return n
}
