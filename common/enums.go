// Package common keeps small types shared between configuration, conversion
// and command line.
package common

import (
	"fmt"
	"strings"
)

// OutputFmt is the requested output type.
type OutputFmt int

const (
	// OutputFmtFragment is bare HTML fragment as produced by converter.
	OutputFmtFragment OutputFmt = iota
	// OutputFmtPage is fragment wrapped into standalone HTML page.
	OutputFmtPage
)

var outputFmtNames = []string{
	OutputFmtFragment: "fragment",
	OutputFmtPage:     "page",
}

func (o OutputFmt) String() string {
	if o < 0 || int(o) >= len(outputFmtNames) {
		return fmt.Sprintf("OutputFmt(%d)", int(o))
	}
	return outputFmtNames[o]
}

// IsValid reports whether value is one of defined formats.
func (o OutputFmt) IsValid() bool {
	return o >= 0 && int(o) < len(outputFmtNames)
}

// Ext returns file extension of produced output.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtFragment, OutputFmtPage:
		return ".html"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// ParseOutputFmt attempts to convert a string to OutputFmt, comparison is
// case insensitive.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range outputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is not a valid OutputFmt, try [%s]", name, strings.Join(outputFmtNames, ", "))
}

// OutputFmtNames returns list of possible values.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames...)
}

// MarshalText implements encoding.TextMarshaler so enum is written to YAML
// by name.
func (o OutputFmt) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OutputFmt) UnmarshalText(text []byte) error {
	v, err := ParseOutputFmt(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
